package web

// company.go provides the /company_info action-dispatch endpoint. The
// endpoint predates the rest of the API and keeps its own envelope: a
// numeric error taxonomy with timestamps, and input merged from form
// fields and the JSON body. The company record is a singleton and the
// logo may arrive as a multipart file, a base64 string, or an explicit
// removal flag.

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rorycl/bizmanager/db"
)

// Company endpoint error codes.
const (
	codeMissingAction          = 1001
	codeInvalidAction          = 1002
	codeMissingRequiredField   = 2001
	codeInvalidDataFormat      = 2002
	codeDuplicateEntry         = 2003
	codeRecordNotFound         = 2004
	codeFileUploadError        = 3001
	codeInvalidBase64          = 3002
	codeDatabaseError          = 4001
	codeValidationError        = 5001
	codeSingleCompanyViolation = 5002
	codeServerError            = 9999
)

// maxLogoBytes caps the stored logo size.
const maxLogoBytes = 5 << 20 // 5MB

// allowedLogoTypes is the sniffed MIME allow-list for logo uploads.
var allowedLogoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// regexpICE matches a Moroccan ICE company tax identifier, exactly 15
// ascii digits.
var regexpICE = regexp.MustCompile(`^[0-9]{15}$`)

// regexpDataURL matches the data-URL prefix optionally carried by
// base64 logo submissions.
var regexpDataURL = regexp.MustCompile(`^data:image/[a-zA-Z0-9.+-]+;base64,`)

// companyError is an error destined for the company endpoint's wire
// envelope.
type companyError struct {
	status  int
	code    int
	message string
	details any
}

// companyTimestamp formats the envelope timestamp.
func companyTimestamp() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05")
}

// companySuccess writes the company endpoint's success envelope.
func (web *WebApp) companySuccess(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{
		"success":   true,
		"message":   message,
		"timestamp": companyTimestamp(),
	}
	if data != nil {
		body["data"] = data
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		web.log.Error("response encoding error", "error", err)
	}
}

// companyFail writes the company endpoint's error envelope.
func (web *WebApp) companyFail(w http.ResponseWriter, ce *companyError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ce.status)
	errBody := map[string]any{
		"message":   ce.message,
		"code":      ce.code,
		"timestamp": companyTimestamp(),
	}
	if ce.details != nil {
		errBody["details"] = ce.details
	}
	body := map[string]any{
		"success": false,
		"error":   errBody,
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		web.log.Error("response encoding error", "error", err)
	}
}

// companyInput is the merged form/JSON input for create and update.
// Nil fields were not supplied.
type companyInput struct {
	CompanyID  *int64  `json:"CompanyID"`
	LegalName  *string `json:"legalName"`
	TradeName  *string `json:"tradeName"`
	ICE        *string `json:"ice"`
	RC         *string `json:"rc"`
	IfNumber   *string `json:"ifNumber"`
	CNSS       *string `json:"cnss"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	Country    *string `json:"country"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
	Website    *string `json:"website"`
	LogoBase64 *string `json:"logo_base64"`
	RemoveLogo bool    `json:"remove_logo"`

	// Resolved logo bytes from the multipart file or base64 field.
	logo    []byte
	setLogo bool
}

// companyRecord is the read_single wire form, the stored row with the
// logo re-encoded as base64.
type companyRecord struct {
	db.Company
	LogoBase64 *string `json:"logo_base64"`
}

// handleCompanyInfo dispatches /company_info on its action query
// parameter.
func (web *WebApp) handleCompanyInfo() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		action := r.URL.Query().Get("action")
		if action == "" {
			web.companyFail(w, &companyError{
				http.StatusBadRequest, codeMissingAction, "An action parameter is required", nil,
			})
			return
		}

		// read actions are GET, write actions POST.
		switch action {
		case "read", "read_single":
			if r.Method != http.MethodGet {
				web.companyFail(w, &companyError{
					http.StatusMethodNotAllowed, codeInvalidAction,
					"Action " + action + " requires GET", nil,
				})
				return
			}
		case "create", "update", "delete":
			if r.Method != http.MethodPost {
				web.companyFail(w, &companyError{
					http.StatusMethodNotAllowed, codeInvalidAction,
					"Action " + action + " requires POST", nil,
				})
				return
			}
		default:
			web.companyFail(w, &companyError{
				http.StatusBadRequest, codeInvalidAction, "Unknown action " + action, nil,
			})
			return
		}

		switch action {
		case "create":
			web.companyCreate(w, r)
		case "read":
			web.companyRead(w, r)
		case "read_single":
			web.companyReadSingle(w, r)
		case "update":
			web.companyUpdate(w, r)
		case "delete":
			web.companyDelete(w, r)
		}
	})
}

// formString returns a pointer to a form value if the key was
// supplied.
func formString(r *http.Request, key string) *string {
	if vs, ok := r.Form[key]; ok && len(vs) > 0 {
		return &vs[0]
	}
	return nil
}

// parseCompanyInput merges input from a JSON body or form fields,
// resolving any logo submission to bytes.
func parseCompanyInput(r *http.Request) (*companyInput, *companyError) {

	input := &companyInput{}
	contentType := r.Header.Get("Content-Type")

	switch {
	case strings.HasPrefix(contentType, "application/json"):
		if err := json.NewDecoder(r.Body).Decode(input); err != nil {
			return nil, &companyError{
				http.StatusBadRequest, codeInvalidDataFormat, "Invalid JSON body", nil,
			}
		}

	case strings.HasPrefix(contentType, "multipart/form-data"):
		if err := r.ParseMultipartForm(maxLogoBytes + (1 << 20)); err != nil {
			return nil, &companyError{
				http.StatusUnprocessableEntity, codeFileUploadError, "Could not parse upload", nil,
			}
		}
		input.fromForm(r)

	default:
		if err := r.ParseForm(); err != nil {
			return nil, &companyError{
				http.StatusBadRequest, codeInvalidDataFormat, "Could not parse form", nil,
			}
		}
		input.fromForm(r)
	}

	return input, input.resolveLogo(r)
}

// fromForm fills input fields from parsed form values.
func (input *companyInput) fromForm(r *http.Request) {
	input.LegalName = formString(r, "legalName")
	input.TradeName = formString(r, "tradeName")
	input.ICE = formString(r, "ice")
	input.RC = formString(r, "rc")
	input.IfNumber = formString(r, "ifNumber")
	input.CNSS = formString(r, "cnss")
	input.Address = formString(r, "address")
	input.City = formString(r, "city")
	input.Country = formString(r, "country")
	input.Phone = formString(r, "phone")
	input.Email = formString(r, "email")
	input.Website = formString(r, "website")
	input.LogoBase64 = formString(r, "logo_base64")
	if v := formString(r, "remove_logo"); v != nil {
		input.RemoveLogo = *v == "true" || *v == "1"
	}
	if v := formString(r, "CompanyID"); v != nil {
		if id, err := strconv.ParseInt(*v, 10, 64); err == nil {
			input.CompanyID = &id
		}
	}
}

// resolveLogo resolves a logo submission, preferring an uploaded file
// over a base64 field.
func (input *companyInput) resolveLogo(r *http.Request) *companyError {

	// Multipart file upload.
	if r.MultipartForm != nil {
		file, header, err := r.FormFile("logo")
		if err == nil {
			defer file.Close()
			if header.Size > maxLogoBytes {
				return &companyError{
					http.StatusUnprocessableEntity, codeFileUploadError,
					"File too large", map[string]any{"max_size": maxLogoBytes, "file_size": header.Size},
				}
			}
			contents, err := io.ReadAll(io.LimitReader(file, maxLogoBytes+1))
			if err != nil {
				return &companyError{
					http.StatusUnprocessableEntity, codeFileUploadError, "Could not read uploaded file", nil,
				}
			}
			if len(contents) > maxLogoBytes {
				return &companyError{
					http.StatusUnprocessableEntity, codeFileUploadError,
					"File too large", map[string]any{"max_size": maxLogoBytes},
				}
			}
			mimeType := http.DetectContentType(contents)
			if !allowedLogoTypes[mimeType] {
				return &companyError{
					http.StatusUnprocessableEntity, codeFileUploadError,
					"Invalid file type. Allowed types: JPEG, PNG, GIF, WEBP",
					map[string]any{"provided_type": mimeType},
				}
			}
			input.logo = contents
			input.setLogo = true
			return nil
		}
		if !errors.Is(err, http.ErrMissingFile) {
			return &companyError{
				http.StatusUnprocessableEntity, codeFileUploadError, "Could not read uploaded file", nil,
			}
		}
	}

	// Base64, optionally carrying a data-URL prefix.
	if input.LogoBase64 != nil && *input.LogoBase64 != "" {
		data := regexpDataURL.ReplaceAllString(*input.LogoBase64, "")
		contents, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return &companyError{
				http.StatusUnprocessableEntity, codeInvalidBase64, "Invalid base64 logo data", nil,
			}
		}
		if len(contents) > maxLogoBytes {
			return &companyError{
				http.StatusUnprocessableEntity, codeInvalidBase64,
				"Logo too large", map[string]any{"max_size": maxLogoBytes},
			}
		}
		input.logo = contents
		input.setLogo = true
		return nil
	}

	if input.RemoveLogo {
		input.setLogo = true
	}
	return nil
}

// companyCreate handles action=create. The singleton invariant is
// enforced in the database layer.
func (web *WebApp) companyCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	input, ce := parseCompanyInput(r)
	if ce != nil {
		web.companyFail(w, ce)
		return
	}

	var missing []string
	if input.LegalName == nil || *input.LegalName == "" {
		missing = append(missing, "legalName")
	}
	if input.ICE == nil || *input.ICE == "" {
		missing = append(missing, "ice")
	}
	if len(missing) > 0 {
		web.companyFail(w, &companyError{
			http.StatusBadRequest, codeMissingRequiredField,
			"Required fields are missing", map[string]any{"missing_fields": missing},
		})
		return
	}
	if !regexpICE.MatchString(*input.ICE) {
		web.companyFail(w, &companyError{
			http.StatusUnprocessableEntity, codeValidationError,
			"ICE must be exactly 15 digits",
			map[string]any{"field": "ice", "format": "15 digits required"},
		})
		return
	}
	if input.Email != nil && *input.Email != "" && !validEmail(*input.Email) {
		web.companyFail(w, &companyError{
			http.StatusBadRequest, codeInvalidDataFormat,
			"Invalid email format", map[string]any{"field": "email"},
		})
		return
	}

	c := db.Company{
		LegalName: *input.LegalName,
		ICE:       *input.ICE,
		Logo:      input.logo,
		Country:   "Morocco",
	}
	if input.TradeName != nil {
		c.TradeName = *input.TradeName
	}
	if input.RC != nil {
		c.RC = *input.RC
	}
	if input.IfNumber != nil {
		c.IfNumber = *input.IfNumber
	}
	if input.CNSS != nil {
		c.CNSS = *input.CNSS
	}
	if input.Address != nil {
		c.Address = *input.Address
	}
	if input.City != nil {
		c.City = *input.City
	}
	if input.Country != nil && *input.Country != "" {
		c.Country = *input.Country
	}
	if input.Phone != nil {
		c.Phone = *input.Phone
	}
	if input.Email != nil {
		c.Email = *input.Email
	}
	if input.Website != nil {
		c.Website = *input.Website
	}

	id, err := web.db.CompanyCreate(ctx, c)
	if errors.Is(err, db.ErrCompanyExists) {
		web.companyFail(w, &companyError{
			http.StatusBadRequest, codeSingleCompanyViolation,
			"Only one company record is allowed", nil,
		})
		return
	}
	if err != nil {
		web.log.Error("company create error", "error", err)
		web.companyFail(w, &companyError{
			http.StatusInternalServerError, codeDatabaseError, "Could not create company", nil,
		})
		return
	}
	web.companySuccess(w, http.StatusCreated, "Company created successfully",
		map[string]any{"CompanyID": id})
}

// companyRead handles action=read, listing rows without logo binaries.
func (web *WebApp) companyRead(w http.ResponseWriter, r *http.Request) {
	companies, err := web.db.CompaniesGet(r.Context())
	if err != nil {
		web.log.Error("company read error", "error", err)
		web.companyFail(w, &companyError{
			http.StatusInternalServerError, codeDatabaseError, "Could not read companies", nil,
		})
		return
	}
	web.companySuccess(w, http.StatusOK, "Companies retrieved successfully", companies)
}

// companyReadSingle handles action=read_single, returning the row with
// the logo re-encoded as base64.
func (web *WebApp) companyReadSingle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	idParam := r.URL.Query().Get("CompanyID")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil || id < 1 {
		web.companyFail(w, &companyError{
			http.StatusBadRequest, codeMissingRequiredField, "Valid CompanyID is required", nil,
		})
		return
	}

	company, err := web.db.CompanyGet(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		web.companyFail(w, &companyError{
			http.StatusNotFound, codeRecordNotFound, "Company not found",
			map[string]any{"CompanyID": id},
		})
		return
	}
	if err != nil {
		web.log.Error("company read error", "error", err)
		web.companyFail(w, &companyError{
			http.StatusInternalServerError, codeDatabaseError, "Could not read company", nil,
		})
		return
	}

	record := companyRecord{Company: company}
	if company.Logo != nil {
		encoded := base64.StdEncoding.EncodeToString(company.Logo)
		record.LogoBase64 = &encoded
	}
	web.companySuccess(w, http.StatusOK, "Company retrieved successfully", record)
}

// companyUpdate handles action=update, a partial patch by CompanyID.
func (web *WebApp) companyUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	input, ce := parseCompanyInput(r)
	if ce != nil {
		web.companyFail(w, ce)
		return
	}
	if input.CompanyID == nil || *input.CompanyID < 1 {
		web.companyFail(w, &companyError{
			http.StatusBadRequest, codeMissingRequiredField, "Valid CompanyID is required", nil,
		})
		return
	}

	// The identifying fields cannot be blanked.
	if input.LegalName != nil && *input.LegalName == "" {
		web.companyFail(w, &companyError{
			http.StatusUnprocessableEntity, codeValidationError,
			"legalName cannot be empty", map[string]any{"field": "legalName"},
		})
		return
	}
	if input.ICE != nil && !regexpICE.MatchString(*input.ICE) {
		web.companyFail(w, &companyError{
			http.StatusUnprocessableEntity, codeValidationError,
			"ICE must be exactly 15 digits",
			map[string]any{"field": "ice", "format": "15 digits required"},
		})
		return
	}
	if input.Email != nil && *input.Email != "" && !validEmail(*input.Email) {
		web.companyFail(w, &companyError{
			http.StatusBadRequest, codeInvalidDataFormat,
			"Invalid email format", map[string]any{"field": "email"},
		})
		return
	}

	patch := db.CompanyPatch{
		LegalName: input.LegalName,
		TradeName: input.TradeName,
		ICE:       input.ICE,
		RC:        input.RC,
		IfNumber:  input.IfNumber,
		CNSS:      input.CNSS,
		Address:   input.Address,
		City:      input.City,
		Country:   input.Country,
		Phone:     input.Phone,
		Email:     input.Email,
		Website:   input.Website,
	}
	if input.setLogo {
		patch.SetLogo = true
		if !input.RemoveLogo {
			patch.Logo = input.logo
		}
	}

	// Reject an update carrying nothing to change.
	if !patch.SetLogo && patch.LegalName == nil && patch.TradeName == nil &&
		patch.ICE == nil && patch.RC == nil && patch.IfNumber == nil &&
		patch.CNSS == nil && patch.Address == nil && patch.City == nil &&
		patch.Country == nil && patch.Phone == nil && patch.Email == nil &&
		patch.Website == nil {
		web.companyFail(w, &companyError{
			http.StatusBadRequest, codeMissingRequiredField, "No fields to update", nil,
		})
		return
	}

	err := web.db.CompanyUpdate(ctx, *input.CompanyID, patch)
	if errors.Is(err, db.ErrNotFound) {
		web.companyFail(w, &companyError{
			http.StatusNotFound, codeRecordNotFound, "Company not found",
			map[string]any{"CompanyID": *input.CompanyID},
		})
		return
	}
	if err != nil {
		web.log.Error("company update error", "error", err)
		web.companyFail(w, &companyError{
			http.StatusInternalServerError, codeDatabaseError, "Could not update company", nil,
		})
		return
	}
	web.companySuccess(w, http.StatusOK, "Company updated successfully", nil)
}

// companyDelete handles action=delete by CompanyID.
func (web *WebApp) companyDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	input, ce := parseCompanyInput(r)
	if ce != nil {
		web.companyFail(w, ce)
		return
	}
	if input.CompanyID == nil || *input.CompanyID < 1 {
		web.companyFail(w, &companyError{
			http.StatusBadRequest, codeMissingRequiredField, "Valid CompanyID is required", nil,
		})
		return
	}

	err := web.db.CompanyDelete(ctx, *input.CompanyID)
	if errors.Is(err, db.ErrNotFound) {
		web.companyFail(w, &companyError{
			http.StatusNotFound, codeRecordNotFound, "Company not found",
			map[string]any{"CompanyID": *input.CompanyID},
		})
		return
	}
	if err != nil {
		web.log.Error("company delete error", "error", err)
		web.companyFail(w, &companyError{
			http.StatusInternalServerError, codeDatabaseError, "Could not delete company", nil,
		})
		return
	}
	web.companySuccess(w, http.StatusOK, "Company deleted successfully", nil)
}
