package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ozytarget/invozy-backend/internal/db"
	"github.com/ozytarget/invozy-backend/internal/domain"
)

type DocumentRepository struct {
	DB *db.Postgres
}

// ErrAlreadySigned is returned by SignEstimate when the estimate exists but
// was signed before this call, for instance by a concurrent signer.
var ErrAlreadySigned = errors.New("estimate already signed")

const documentColumns = `
	id, owner_user_id, doc_type, status, number,
	client_name, client_email, client_phone, client_address,
	company_name, company_email, company_phone, company_address,
	title, description, issued_at, due_at, amount, tax_rate, notes, terms,
	signature, signed, estimate_id, share_token, search_key, created_at, updated_at`

// Create persists a document and its line items in one transaction. The
// document number is drawn from a per-owner atomic counter row so two
// concurrent creates can never compute the same number. The caller is
// expected to have filled Amount, SearchKey is rebuilt here once the number
// is known.
func (r DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	return r.DB.WithTx(ctx, func(tx pgx.Tx) error {
		return insertDocument(ctx, tx, doc)
	})
}

func insertDocument(ctx context.Context, tx pgx.Tx, doc *domain.Document) error {
	n, err := nextNumber(ctx, tx, doc.OwnerUserID, doc.Type)
	if err != nil {
		return err
	}
	doc.Number = domain.FormatNumber(doc.Type, n)
	doc.SearchKey = domain.SearchKey(doc.Client.Name, doc.Title, doc.Number)

	err = tx.QueryRow(ctx, `
		INSERT INTO documents
		(owner_user_id, doc_type, status, number,
		 client_name, client_email, client_phone, client_address,
		 company_name, company_email, company_phone, company_address,
		 title, description, issued_at, due_at, amount, tax_rate, notes, terms,
		 signature, signed, estimate_id, share_token, search_key, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25, now(), now())
		RETURNING id, created_at, updated_at
	`,
		doc.OwnerUserID, doc.Type, doc.Status, doc.Number,
		doc.Client.Name, doc.Client.Email, doc.Client.Phone, doc.Client.Address,
		doc.Company.Name, doc.Company.Email, doc.Company.Phone, doc.Company.Address,
		doc.Title, doc.Description, doc.IssuedAt, doc.DueAt, doc.Amount, doc.TaxRate, doc.Notes, doc.Terms,
		doc.Signature, doc.Signed, doc.EstimateID, doc.ShareToken, doc.SearchKey,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return err
	}

	return replaceLineItems(ctx, tx, doc.ID, doc.LineItems)
}

func nextNumber(ctx context.Context, tx pgx.Tx, ownerUserID int64, t domain.DocType) (int64, error) {
	var n int64
	err := tx.QueryRow(ctx, `
		INSERT INTO document_counters (owner_user_id, doc_type, n)
		VALUES ($1,$2,1)
		ON CONFLICT (owner_user_id, doc_type) DO UPDATE SET n = document_counters.n + 1
		RETURNING n
	`, ownerUserID, t).Scan(&n)
	return n, err
}

func replaceLineItems(ctx context.Context, tx pgx.Tx, docID int64, items []domain.LineItem) error {
	if _, err := tx.Exec(ctx, `DELETE FROM line_items WHERE document_id=$1`, docID); err != nil {
		return err
	}
	for i, it := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO line_items (document_id, position, description, quantity, unit_price)
			VALUES ($1,$2,$3,$4,$5)
		`, docID, i, it.Description, it.Quantity, it.UnitPrice)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r DocumentRepository) Get(ctx context.Context, ownerUserID, id int64) (*domain.Document, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE id=$1 AND owner_user_id=$2
	`, id, ownerUserID)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.loadLineItems(ctx, []*domain.Document{doc}); err != nil {
		return nil, err
	}
	return doc, nil
}

// GetByShareToken resolves a document through its public share token. No
// owner filter: the share link is the unauthenticated read surface.
func (r DocumentRepository) GetByShareToken(ctx context.Context, token string) (*domain.Document, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE share_token=$1
	`, token)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.loadLineItems(ctx, []*domain.Document{doc}); err != nil {
		return nil, err
	}
	return doc, nil
}

type ListFilter struct {
	Type   *domain.DocType
	Search string
	Limit  int
}

func (r DocumentRepository) List(ctx context.Context, ownerUserID int64, f ListFilter) ([]*domain.Document, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 500
	}
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE owner_user_id=$1
	`
	args := []any{ownerUserID}
	if f.Type != nil {
		args = append(args, *f.Type)
		query += ` AND doc_type=$2`
	}
	if f.Search != "" {
		args = append(args, "%"+domain.SearchKey(f.Search, "", "")+"%")
		query += ` AND search_key LIKE $` + strconv.Itoa(len(args))
	}
	args = append(args, limit)
	query += ` ORDER BY issued_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.DB.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadLineItems(ctx, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// UpdateDocumentInput carries a partial update. Nil fields are left as they
// are. When LineItems is set the amount is recomputed from it; the search key
// is always rebuilt from the merged client name, title and number.
type UpdateDocumentInput struct {
	Client      *domain.ContactSnapshot
	Company     *domain.ContactSnapshot
	Title       *string
	Description *string
	IssuedAt    *time.Time
	DueAt       *time.Time
	ClearDueAt  bool
	TaxRate     *float64
	Notes       *string
	Terms       *string
	LineItems   *[]domain.LineItem
}

func (r DocumentRepository) Update(ctx context.Context, ownerUserID, id int64, in UpdateDocumentInput) (*domain.Document, error) {
	var doc *domain.Document
	err := r.DB.WithTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			SELECT `+documentColumns+`
			FROM documents
			WHERE id=$1 AND owner_user_id=$2
			FOR UPDATE
		`, id, ownerUserID)
		current, err := scanDocument(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		if in.Client != nil {
			current.Client = *in.Client
		}
		if in.Company != nil {
			current.Company = *in.Company
		}
		if in.Title != nil {
			current.Title = *in.Title
		}
		if in.Description != nil {
			current.Description = *in.Description
		}
		if in.IssuedAt != nil {
			current.IssuedAt = *in.IssuedAt
		}
		if in.ClearDueAt {
			current.DueAt = nil
		} else if in.DueAt != nil {
			current.DueAt = in.DueAt
		}
		if in.TaxRate != nil {
			current.TaxRate = *in.TaxRate
		}
		if in.Notes != nil {
			current.Notes = *in.Notes
		}
		if in.Terms != nil {
			current.Terms = *in.Terms
		}
		itemsChanged := false
		if in.LineItems != nil {
			current.LineItems = *in.LineItems
			current.Amount = domain.TotalAmount(current.LineItems)
			itemsChanged = true
		}
		current.SearchKey = domain.SearchKey(current.Client.Name, current.Title, current.Number)

		_, err = tx.Exec(ctx, `
			UPDATE documents SET
				client_name=$1, client_email=$2, client_phone=$3, client_address=$4,
				company_name=$5, company_email=$6, company_phone=$7, company_address=$8,
				title=$9, description=$10, issued_at=$11, due_at=$12, amount=$13, tax_rate=$14,
				notes=$15, terms=$16, search_key=$17, updated_at=now()
			WHERE id=$18
		`,
			current.Client.Name, current.Client.Email, current.Client.Phone, current.Client.Address,
			current.Company.Name, current.Company.Email, current.Company.Phone, current.Company.Address,
			current.Title, current.Description, current.IssuedAt, current.DueAt, current.Amount, current.TaxRate,
			current.Notes, current.Terms, current.SearchKey, current.ID,
		)
		if err != nil {
			return err
		}
		if itemsChanged {
			if err := replaceLineItems(ctx, tx, current.ID, current.LineItems); err != nil {
				return err
			}
		}
		doc = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	if doc.LineItems == nil {
		if err := r.loadLineItems(ctx, []*domain.Document{doc}); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// Delete removes the document, its line items, and any payments recorded
// against it, all in one transaction.
func (r DocumentRepository) Delete(ctx context.Context, ownerUserID, id int64) error {
	return r.DB.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM payments WHERE invoice_id=$1 AND owner_user_id=$2`, id, ownerUserID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM line_items WHERE document_id=$1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM documents WHERE id=$1 AND owner_user_id=$2`, id, ownerUserID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SignEstimate applies the signature to the estimate and inserts the spawned
// invoice in the same transaction. Either both writes land or neither does.
func (r DocumentRepository) SignEstimate(ctx context.Context, est *domain.Document, invoice *domain.Document) error {
	return r.DB.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE documents
			SET signature=$1, signed=true, status=$2, updated_at=now()
			WHERE id=$3 AND owner_user_id=$4 AND doc_type=$5 AND signed=false
		`, est.Signature, domain.StatusSigned, est.ID, est.OwnerUserID, domain.DocTypeEstimate)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var signed bool
			err := tx.QueryRow(ctx, `
				SELECT signed FROM documents
				WHERE id=$1 AND owner_user_id=$2 AND doc_type=$3
			`, est.ID, est.OwnerUserID, domain.DocTypeEstimate).Scan(&signed)
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			if err != nil {
				return err
			}
			if signed {
				return ErrAlreadySigned
			}
			return ErrNotFound
		}
		return insertDocument(ctx, tx, invoice)
	})
}

// SignInvoice marks an invoice as signed and sent.
func (r DocumentRepository) SignInvoice(ctx context.Context, ownerUserID, id int64, signature string) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE documents
		SET signature=$1, signed=true, status=$2, updated_at=now()
		WHERE id=$3 AND owner_user_id=$4 AND doc_type=$5
	`, signature, domain.StatusSent, id, ownerUserID, domain.DocTypeInvoice)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkSent transitions draft to sent. Any other current status is left
// untouched and reported as no transition.
func (r DocumentRepository) MarkSent(ctx context.Context, ownerUserID, id int64) (bool, error) {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE documents SET status=$1, updated_at=now()
		WHERE id=$2 AND owner_user_id=$3 AND status=$4
	`, domain.StatusSent, id, ownerUserID, domain.StatusDraft)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkViewedByToken records that the public share page was opened.
func (r DocumentRepository) MarkViewedByToken(ctx context.Context, token string) (bool, error) {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE documents SET status=$1, updated_at=now()
		WHERE share_token=$2 AND status=$3
	`, domain.StatusViewed, token, domain.StatusSent)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeclineByToken declines a sent or viewed estimate through its share link.
func (r DocumentRepository) DeclineByToken(ctx context.Context, token string) (bool, error) {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE documents SET status=$1, updated_at=now()
		WHERE share_token=$2 AND doc_type=$3 AND status IN ($4,$5)
	`, domain.StatusDeclined, token, domain.DocTypeEstimate, domain.StatusSent, domain.StatusViewed)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RevertToDraft force-resets an invoice regardless of its payment history.
func (r DocumentRepository) RevertToDraft(ctx context.Context, ownerUserID, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE documents
		SET status=$1, signed=false, signature=NULL, updated_at=now()
		WHERE id=$2 AND owner_user_id=$3 AND doc_type=$4
	`, domain.StatusDraft, id, ownerUserID, domain.DocTypeInvoice)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r DocumentRepository) loadLineItems(ctx context.Context, docs []*domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(docs))
	byID := make(map[int64]*domain.Document, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
		byID[d.ID] = d
	}

	rows, err := r.DB.Pool.Query(ctx, `
		SELECT document_id, position, description, quantity, unit_price
		FROM line_items
		WHERE document_id = ANY($1)
		ORDER BY document_id, position
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var docID int64
		var it domain.LineItem
		if err := rows.Scan(&docID, &it.Position, &it.Description, &it.Quantity, &it.UnitPrice); err != nil {
			return err
		}
		if d, ok := byID[docID]; ok {
			d.LineItems = append(d.LineItems, it)
		}
	}
	return rows.Err()
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var d domain.Document
	if err := row.Scan(
		&d.ID, &d.OwnerUserID, &d.Type, &d.Status, &d.Number,
		&d.Client.Name, &d.Client.Email, &d.Client.Phone, &d.Client.Address,
		&d.Company.Name, &d.Company.Email, &d.Company.Phone, &d.Company.Address,
		&d.Title, &d.Description, &d.IssuedAt, &d.DueAt, &d.Amount, &d.TaxRate, &d.Notes, &d.Terms,
		&d.Signature, &d.Signed, &d.EstimateID, &d.ShareToken, &d.SearchKey, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}
