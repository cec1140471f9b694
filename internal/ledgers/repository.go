package ledgers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/saldo/internal/documents"
	"github.com/JaimeStill/saldo/internal/oracle"
	"github.com/JaimeStill/saldo/internal/prompts"
	"github.com/JaimeStill/saldo/internal/reconcile"
	"github.com/JaimeStill/saldo/internal/workflow"
	"github.com/JaimeStill/saldo/pkg/pagination"
	"github.com/JaimeStill/saldo/pkg/query"
	"github.com/JaimeStill/saldo/pkg/repository"
	"github.com/JaimeStill/saldo/pkg/storage"
)

const ledgerColumns = `id, document_id, order_number, delivery_number, tour_number,
		shipper, consignee, carrier, vehicle_plate, stop_count, page_count,
		average_confidence, review_required, review_reasons, warnings, errors,
		gap_fill, tie_break, export_key, reconciled_at, approved_by, approved_at`

type repo struct {
	db         *sql.DB
	rt         *workflow.Runtime
	storage    storage.System
	docs       documents.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a ledger repository implementing the System interface.
// It internally constructs the workflow runtime from the provided dependencies.
func New(
	db *sql.DB,
	orc oracle.Oracle,
	oracleCfg *oracle.Config,
	engine reconcile.Config,
	logger *slog.Logger,
	pagination pagination.Config,
	store storage.System,
	docs documents.System,
	prompts prompts.System,
) System {
	rt := &workflow.Runtime{
		Oracle:    orc,
		Retry:     oracleCfg.Policy(),
		Workers:   oracleCfg.Workers,
		Engine:    engine,
		Prompts:   prompts,
		Storage:   store,
		Documents: docs,
		Logger:    logger.With("workflow", "reconcile"),
	}
	return &repo{
		db:         db,
		rt:         rt,
		storage:    store,
		docs:       docs,
		logger:     logger.With("system", "ledgers"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Ledger], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Carrier", "Consignee", "DeliveryNumber", "OrderNumber", "TourNumber")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count ledgers: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanLedger)
	if err != nil {
		return nil, fmt.Errorf("query ledgers: %w", err)
	}

	if err := r.attachRows(ctx, items); err != nil {
		return nil, err
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Ledger, error) {
	return r.findBy(ctx, "ID", id)
}

func (r *repo) FindByDocument(ctx context.Context, documentID uuid.UUID) (*Ledger, error) {
	return r.findBy(ctx, "DocumentID", documentID)
}

func (r *repo) findBy(ctx context.Context, field string, id uuid.UUID) (*Ledger, error) {
	q, args := query.NewBuilder(projection).BuildSingle(field, id)

	l, err := repository.QueryOne(ctx, r.db, q, args, scanLedger)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if err := r.attach(ctx, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// Reconcile runs the workflow for one document and stores its ledger.
// Any failure after the document is found, including a panic in the
// engine, is reported as ErrCorrelationFailed and marks the document failed.
func (r *repo) Reconcile(ctx context.Context, documentID uuid.UUID) (ledger *Ledger, err error) {
	defer func() {
		if p := recover(); p != nil {
			ledger = nil
			err = fmt.Errorf("%w: document %s: panic: %v", ErrCorrelationFailed, documentID, p)
			r.markFailed(ctx, documentID, err)
		}
	}()

	result, err := workflow.Execute(ctx, r.rt, documentID)
	if err != nil {
		if errors.Is(err, workflow.ErrDocumentNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, documentID)
		}
		err = fmt.Errorf("%w: document %s: %w", ErrCorrelationFailed, documentID, err)
		r.markFailed(ctx, documentID, err)
		return nil, err
	}

	l, err := r.store(ctx, result)
	if err != nil {
		err = fmt.Errorf("%w: document %s: store ledger: %w", ErrCorrelationFailed, documentID, err)
		r.markFailed(ctx, documentID, err)
		return nil, err
	}

	r.logger.Info("document reconciled",
		"id", l.ID,
		"document_id", documentID,
		"rows", len(l.Rows),
		"review_required", l.ReviewRequired,
	)
	return l, nil
}

func (r *repo) store(ctx context.Context, result *workflow.Result) (*Ledger, error) {
	outcome := result.Outcome
	led := outcome.Ledger
	issues := issuesOf(outcome)
	key := documents.LedgerKey(result.DocumentID)

	status := documents.StatusComplete
	if outcome.Disposition.NeedsReview {
		status = documents.StatusReview
	}

	upsertQ := `
		INSERT INTO ledgers(
			document_id, order_number, delivery_number, tour_number,
			shipper, consignee, carrier, vehicle_plate, stop_count, page_count,
			average_confidence, review_required, review_reasons, warnings, errors,
			gap_fill, tie_break, export_key, reconciled_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (document_id) DO UPDATE SET
			order_number = EXCLUDED.order_number,
			delivery_number = EXCLUDED.delivery_number,
			tour_number = EXCLUDED.tour_number,
			shipper = EXCLUDED.shipper,
			consignee = EXCLUDED.consignee,
			carrier = EXCLUDED.carrier,
			vehicle_plate = EXCLUDED.vehicle_plate,
			stop_count = EXCLUDED.stop_count,
			page_count = EXCLUDED.page_count,
			average_confidence = EXCLUDED.average_confidence,
			review_required = EXCLUDED.review_required,
			review_reasons = EXCLUDED.review_reasons,
			warnings = EXCLUDED.warnings,
			errors = EXCLUDED.errors,
			gap_fill = EXCLUDED.gap_fill,
			tie_break = EXCLUDED.tie_break,
			export_key = EXCLUDED.export_key,
			reconciled_at = EXCLUDED.reconciled_at,
			approved_by = NULL,
			approved_at = NULL
		RETURNING ` + ledgerColumns

	upsertArgs := []any{
		result.DocumentID,
		led.References.OrderNumber,
		led.References.DeliveryNumber,
		led.References.TourNumber,
		led.Shipper,
		led.Consignee,
		led.Carrier,
		led.VehiclePlate,
		len(led.Stops),
		result.PageCount,
		led.AverageConfidence,
		outcome.Disposition.NeedsReview,
		marshalStrings(outcome.Disposition.Reasons),
		marshalStrings(led.Warnings),
		marshalStrings(led.Errors),
		string(led.GapFill),
		led.TieBreak,
		key,
		result.CompletedAt,
	}

	l, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Ledger, error) {
		l, err := repository.QueryOne(ctx, tx, upsertQ, upsertArgs, scanLedger)
		if err != nil {
			return Ledger{}, fmt.Errorf("upsert ledger: %w", err)
		}

		if err := replaceRows(ctx, tx, l.ID, outcome.Rows); err != nil {
			return Ledger{}, err
		}
		if err := replaceIssues(ctx, tx, l.ID, issues); err != nil {
			return Ledger{}, err
		}

		if err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE documents SET status = $1, updated_at = NOW() WHERE id = $2",
			string(status), result.DocumentID,
		); err != nil {
			return Ledger{}, fmt.Errorf("update document status: %w", err)
		}

		export := Export{
			DocumentID:   result.DocumentID,
			Filename:     result.Filename,
			ReconciledAt: result.CompletedAt,
			Ledger:       led,
			Rows:         outcome.Rows,
			Validations:  outcome.Validations,
			Disposition:  outcome.Disposition,
		}
		if err := r.storage.UploadJSON(ctx, key, export); err != nil {
			return Ledger{}, fmt.Errorf("export ledger: %w", err)
		}

		l.Rows = outcome.Rows
		l.Issues = issues
		return l, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &l, nil
}

// ReconcileBatch reconciles each document independently with at most
// oracle.workers documents in flight. Oracle calls of all documents share
// the runtime's limiter. Failures are collected, never raised.
func (r *repo) ReconcileBatch(ctx context.Context, documentIDs []uuid.UUID) *BatchResult {
	ids := dedupe(documentIDs)
	ledgers := make([]*Ledger, len(ids))
	errs := make([]error, len(ids))

	var g errgroup.Group
	g.SetLimit(max(r.rt.Workers, 1))

	for i, id := range ids {
		g.Go(func() error {
			ledgers[i], errs[i] = r.Reconcile(ctx, id)
			return nil
		})
	}
	g.Wait()

	result := &BatchResult{
		Ledgers:  []Ledger{},
		Failures: []Failure{},
	}
	for i, id := range ids {
		if errs[i] != nil {
			result.Failures = append(result.Failures, Failure{DocumentID: id, Error: errs[i].Error()})
			continue
		}
		result.Ledgers = append(result.Ledgers, *ledgers[i])
	}

	r.logger.Info("batch reconciled",
		"documents", len(ids),
		"ledgers", len(result.Ledgers),
		"failures", len(result.Failures),
	)
	return result
}

func (r *repo) Validate(entry reconcile.Entry) reconcile.Result {
	return reconcile.Validate(entry, r.rt.Engine)
}

func (r *repo) Approve(ctx context.Context, id uuid.UUID, cmd ApproveCommand) (*Ledger, error) {
	approveQ := `
		UPDATE ledgers
		SET approved_by = $1, approved_at = NOW()
		WHERE id = $2
		RETURNING ` + ledgerColumns

	l, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Ledger, error) {
		l, err := repository.QueryOne(ctx, tx, approveQ, []any{cmd.ApprovedBy, id}, scanLedger)
		if err != nil {
			return Ledger{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		if err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE documents SET status = 'complete', updated_at = NOW() WHERE id = $1 AND status = 'review'",
			l.DocumentID,
		); err != nil {
			return Ledger{}, ErrInvalidStatus
		}

		return l, nil
	})
	if err != nil {
		return nil, err
	}

	if err := r.attach(ctx, &l); err != nil {
		return nil, err
	}

	r.logger.Info("ledger approved", "id", l.ID, "approved_by", cmd.ApprovedBy)
	return &l, nil
}

// Delete removes a ledger, returns its document to pending, and removes the
// exported ledger JSON.
func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	documentID, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (uuid.UUID, error) {
		var documentID uuid.UUID
		if err := tx.QueryRowContext(
			ctx,
			"DELETE FROM ledgers WHERE id = $1 RETURNING document_id",
			id,
		).Scan(&documentID); err != nil {
			return uuid.Nil, err
		}

		if _, err := tx.ExecContext(
			ctx,
			"UPDATE documents SET status = 'pending', updated_at = NOW() WHERE id = $1",
			documentID,
		); err != nil {
			return uuid.Nil, err
		}
		return documentID, nil
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	key := documents.LedgerKey(documentID)
	if delErr := r.storage.Delete(ctx, key); delErr != nil {
		r.logger.Warn("ledger export delete failed", "key", key, "error", delErr)
	}

	r.logger.Info("ledger deleted", "id", id, "document_id", documentID)
	return nil
}

func (r *repo) markFailed(ctx context.Context, documentID uuid.UUID, cause error) {
	if ctx.Err() != nil {
		return
	}
	if err := r.docs.UpdateStatus(ctx, documentID, documents.StatusFailed); err != nil {
		r.logger.Warn("mark document failed", "document_id", documentID, "error", err)
	}
	r.logger.Error("reconciliation failed", "document_id", documentID, "error", cause)
}

func (r *repo) attach(ctx context.Context, l *Ledger) error {
	q, args := query.NewBuilder(issueProjection, issueSort).
		WhereEquals("i.ledger_id", l.ID).
		Build()

	issues, err := repository.QueryMany(ctx, r.db, q, args, scanIssue)
	if err != nil {
		return fmt.Errorf("query ledger issues: %w", err)
	}
	l.Issues = issues

	rows, err := r.rows(ctx, []any{l.ID})
	if err != nil {
		return err
	}
	l.Rows = rows[l.ID]
	return nil
}

func (r *repo) attachRows(ctx context.Context, items []Ledger) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]any, len(items))
	for i, l := range items {
		ids[i] = l.ID
	}

	rows, err := r.rows(ctx, ids)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].Rows = rows[items[i].ID]
	}
	return nil
}

func (r *repo) rows(ctx context.Context, ledgerIDs []any) (map[uuid.UUID][]reconcile.Row, error) {
	q, args := query.NewBuilder(rowProjection, rowSort).
		WhereIn("LedgerID", ledgerIDs).
		Build()

	found, err := repository.QueryMany(ctx, r.db, q, args, scanRow)
	if err != nil {
		return nil, fmt.Errorf("query ledger rows: %w", err)
	}

	out := make(map[uuid.UUID][]reconcile.Row, len(ledgerIDs))
	for _, row := range found {
		out[row.LedgerID] = append(out[row.LedgerID], row.Row)
	}
	return out, nil
}

func replaceRows(ctx context.Context, tx *sql.Tx, ledgerID uuid.UUID, rows []reconcile.Row) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM ledger_rows WHERE ledger_id = $1", ledgerID); err != nil {
		return fmt.Errorf("clear ledger rows: %w", err)
	}

	insertQ := `
		INSERT INTO ledger_rows(
			ledger_id, position, pallet_type, pickup_received, pickup_given,
			delivery_given, delivery_received, saldo
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for i, row := range rows {
		if _, err := tx.ExecContext(ctx, insertQ,
			ledgerID, i, string(row.PalletType),
			row.PickupReceived, row.PickupGiven,
			row.DeliveryGiven, row.DeliveryReceived, row.Saldo,
		); err != nil {
			return fmt.Errorf("insert ledger row %s: %w", row.PalletType, err)
		}
	}
	return nil
}

func replaceIssues(ctx context.Context, tx *sql.Tx, ledgerID uuid.UUID, issues []Issue) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM ledger_issues WHERE ledger_id = $1", ledgerID); err != nil {
		return fmt.Errorf("clear ledger issues: %w", err)
	}

	insertQ := `
		INSERT INTO ledger_issues(ledger_id, position, pallet_type, check_name, severity, message, corrected)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for i, is := range issues {
		if _, err := tx.ExecContext(ctx, insertQ,
			ledgerID, i, string(is.PalletType), string(is.Check),
			string(is.Severity), is.Message, is.Corrected,
		); err != nil {
			return fmt.Errorf("insert ledger issue %s: %w", is.Check, err)
		}
	}
	return nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
