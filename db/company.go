package db

// company.go deals with company information database calls. The
// company_info table is a singleton: at most one row may ever exist,
// enforced here by counting inside the insert transaction.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Company is the concrete type of the company information row. The
// logo binary is never marshalled directly; callers re-encode it as
// base64 where needed.
type Company struct {
	CompanyID int64  `db:"company_id" json:"CompanyID"`
	LegalName string `db:"legal_name" json:"LegalName"`
	TradeName string `db:"trade_name" json:"TradeName"`
	Logo      []byte `db:"logo" json:"-"`
	ICE       string `db:"ice" json:"ICE"`
	RC        string `db:"rc" json:"RC"`
	IfNumber  string `db:"if_number" json:"ifNumber"`
	CNSS      string `db:"cnss" json:"CNSS"`
	Address   string `db:"address" json:"Address"`
	City      string `db:"city" json:"City"`
	Country   string `db:"country" json:"Country"`
	Phone     string `db:"phone" json:"Phone"`
	Email     string `db:"email" json:"Email"`
	Website   string `db:"website" json:"Website"`
	CreatedAt string `db:"created_at" json:"CreatedAt"`
	UpdatedAt string `db:"updated_at" json:"UpdatedAt"`
}

// CompanyPatch carries optional company field updates. Nil fields leave
// the stored column untouched. The logo is tri-state: SetLogo false
// keeps the stored logo, SetLogo true stores Logo, which may be nil to
// remove it.
type CompanyPatch struct {
	LegalName *string
	TradeName *string
	SetLogo   bool
	Logo      []byte
	ICE       *string
	RC        *string
	IfNumber  *string
	CNSS      *string
	Address   *string
	City      *string
	Country   *string
	Phone     *string
	Email     *string
	Website   *string
}

// CompanyCreate inserts the company record, returning its generated
// id. ErrCompanyExists is returned when a record is already present;
// the count check runs inside the insert transaction so concurrent
// creates cannot both succeed.
func (db *DB) CompanyCreate(ctx context.Context, c Company) (int64, error) {

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() // no-op after commit.

	var count int
	if err := tx.GetContext(ctx, &count, db.query(companyCountSQL)); err != nil {
		return 0, fmt.Errorf("company count error: %w", err)
	}
	if count > 0 {
		return 0, ErrCompanyExists
	}

	ps := db.stmt(companyInsertSQL)
	namedArgs := map[string]any{
		"LegalName": c.LegalName,
		"TradeName": c.TradeName,
		"Logo":      c.Logo,
		"ICE":       c.ICE,
		"RC":        c.RC,
		"IfNumber":  c.IfNumber,
		"CNSS":      c.CNSS,
		"Address":   c.Address,
		"City":      c.City,
		"Country":   c.Country,
		"Phone":     c.Phone,
		"Email":     c.Email,
		"Website":   c.Website,
	}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return 0, fmt.Errorf("company insert verify arguments error: %v", err)
	}
	var id int64
	err = tx.NamedStmtContext(ctx, ps.NamedStmt).GetContext(ctx, &id, namedArgs)
	db.logQuery("company insert", namedArgs, err)
	if err != nil {
		return 0, fmt.Errorf("failed to insert company %q: %w", c.LegalName, err)
	}
	return id, tx.Commit()
}

// CompaniesGet returns the company records without their logo
// binaries. In practice the slice holds at most one element.
func (db *DB) CompaniesGet(ctx context.Context) ([]Company, error) {
	companies := []Company{}
	err := db.SelectContext(ctx, &companies, db.query(companiesSQL))
	if err != nil {
		return nil, fmt.Errorf("companies select error: %w", err)
	}
	return companies, nil
}

// CompanyGet returns a single company record by id, including the logo
// binary.
func (db *DB) CompanyGet(ctx context.Context, id int64) (Company, error) {
	ps := db.stmt(companyGetSQL)
	namedArgs := map[string]any{"ID": id}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return Company{}, err
	}
	var c Company
	err := ps.GetContext(ctx, &c, namedArgs)
	db.logQuery("company get", namedArgs, err)
	if errors.Is(err, sql.ErrNoRows) {
		return Company{}, ErrNotFound
	}
	if err != nil {
		return Company{}, fmt.Errorf("company select error: %w", err)
	}
	return c, nil
}

// CompanyUpdate patches the company record.
func (db *DB) CompanyUpdate(ctx context.Context, id int64, patch CompanyPatch) error {
	ps := db.stmt(companyUpdateSQL)
	namedArgs := map[string]any{
		"ID":        id,
		"LegalName": patch.LegalName,
		"TradeName": patch.TradeName,
		"SetLogo":   patch.SetLogo,
		"Logo":      patch.Logo,
		"ICE":       patch.ICE,
		"RC":        patch.RC,
		"IfNumber":  patch.IfNumber,
		"CNSS":      patch.CNSS,
		"Address":   patch.Address,
		"City":      patch.City,
		"Country":   patch.Country,
		"Phone":     patch.Phone,
		"Email":     patch.Email,
		"Website":   patch.Website,
	}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return fmt.Errorf("company update verify arguments error: %v", err)
	}
	res, err := ps.ExecContext(ctx, namedArgs)
	db.logQuery("company update", namedArgs, err)
	if err != nil {
		return fmt.Errorf("failed to update company %d: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// CompanyDelete removes the company record by id.
func (db *DB) CompanyDelete(ctx context.Context, id int64) error {
	ps := db.stmt(companyDeleteSQL)
	namedArgs := map[string]any{"ID": id}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return err
	}
	res, err := ps.ExecContext(ctx, namedArgs)
	db.logQuery("company delete", namedArgs, err)
	if err != nil {
		return fmt.Errorf("failed to delete company %d: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
