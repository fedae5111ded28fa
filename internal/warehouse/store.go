package warehouse

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"InfluencerOps/internal/domain"
	"InfluencerOps/internal/ports"
)

const defaultPaymentDueDays = 30

const schema = `
CREATE TABLE IF NOT EXISTS influencer_metrics (
	id                      TEXT PRIMARY KEY,
	influencer_name         TEXT NOT NULL,
	collected_at            TIMESTAMP NOT NULL,
	followers_count         INTEGER,
	following_count         INTEGER,
	posts_count             INTEGER,
	avg_likes               INTEGER,
	avg_comments            INTEGER,
	engagement_rate         REAL,
	data_quality_score      REAL NOT NULL,
	extraction_confidence   REAL NOT NULL,
	data_source_reliability TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS metric_posts (
	id           TEXT PRIMARY KEY,
	record_id    TEXT NOT NULL REFERENCES influencer_metrics(id),
	post_id      TEXT NOT NULL,
	post_url     TEXT,
	media_type   TEXT NOT NULL,
	likes        INTEGER,
	comments     INTEGER,
	views        INTEGER,
	reach        INTEGER,
	impressions  INTEGER,
	shares       INTEGER,
	post_date    TEXT,
	completeness REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS contracts (
	contract_id      TEXT PRIMARY KEY,
	client_name      TEXT,
	influencer_name  TEXT,
	total_fee        REAL,
	currency         TEXT,
	payment_due_days INTEGER NOT NULL DEFAULT 30,
	contract_status  TEXT NOT NULL DEFAULT 'active',
	payment_status   TEXT NOT NULL DEFAULT 'UNPAID',
	fields_json      TEXT NOT NULL,
	created_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS post_metrics_objectives (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	contract_id      TEXT NOT NULL REFERENCES contracts(contract_id),
	platform         TEXT,
	planned_date     TEXT,
	actual_post_date TEXT,
	posted           INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS payment_queue (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	contract_id  TEXT NOT NULL,
	amount       REAL NOT NULL,
	currency     TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'PENDING',
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	processed_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_metrics_name ON influencer_metrics(influencer_name);
CREATE INDEX IF NOT EXISTS idx_queue_contract ON payment_queue(contract_id, status);
`

// Store backs all persistence ports with a single SQLite database.
type Store struct {
	db *sqlx.DB
}

var (
	_ ports.MetricsWarehouse = (*Store)(nil)
	_ ports.ContractStore    = (*Store)(nil)
	_ ports.PaymentStore     = (*Store)(nil)
)

// Open connects to the SQLite file at path and ensures the schema exists.
// Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", path, err)
	}
	// modernc sqlite serializes writes; a second writer conn only causes
	// SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertMetrics stores one extracted record and its per-post rows in a
// single transaction.
func (s *Store) InsertMetrics(ctx context.Context, rec domain.MetricsRecord, collectedAt time.Time) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.E(domain.KindStorage, "begin metrics insert", err)
	}
	defer tx.Rollback()

	recordID := uuid.NewString()

	query, args, err := sq.Insert("influencer_metrics").
		Columns("id", "influencer_name", "collected_at",
			"followers_count", "following_count", "posts_count",
			"avg_likes", "avg_comments", "engagement_rate",
			"data_quality_score", "extraction_confidence", "data_source_reliability").
		Values(recordID, rec.SubjectID, collectedAt.UTC(),
			rec.Followers, rec.Following, rec.PostsCount,
			rec.AvgLikes, rec.AvgComments, rec.EngagementRate,
			rec.QualityScore, rec.Confidence, string(rec.Reliability)).
		ToSql()
	if err != nil {
		return domain.E(domain.KindStorage, "build metrics insert", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return domain.E(domain.KindStorage, "insert metrics record", err)
	}

	for _, p := range rec.Posts {
		query, args, err := sq.Insert("metric_posts").
			Columns("id", "record_id", "post_id", "post_url", "media_type",
				"likes", "comments", "views", "reach", "impressions", "shares",
				"post_date", "completeness").
			Values(uuid.NewString(), recordID, p.ID, p.URL, string(p.MediaType),
				p.Likes, p.Comments, p.Views, p.Reach, p.Impressions, p.Shares,
				p.Date, p.Completeness).
			ToSql()
		if err != nil {
			return domain.E(domain.KindStorage, "build post insert", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return domain.E(domain.KindStorage, "insert post metrics", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.E(domain.KindStorage, "commit metrics insert", err)
	}
	return nil
}

// Summary aggregates the whole metrics warehouse into one rollup.
func (s *Store) Summary(ctx context.Context) (domain.MetricsSummary, error) {
	var row struct {
		TotalRecords      int64           `db:"total_records"`
		UniqueInfluencers int64           `db:"unique_influencers"`
		LatestCollection  sql.NullString  `db:"latest_collection"`
		AvgFollowers      sql.NullFloat64 `db:"avg_followers"`
		AvgEngagement     sql.NullFloat64 `db:"avg_engagement"`
	}

	const query = `
		SELECT COUNT(*)                        AS total_records,
		       COUNT(DISTINCT influencer_name) AS unique_influencers,
		       MAX(collected_at)               AS latest_collection,
		       AVG(followers_count)            AS avg_followers,
		       AVG(engagement_rate)            AS avg_engagement
		FROM influencer_metrics`

	if err := s.db.GetContext(ctx, &row, query); err != nil {
		return domain.MetricsSummary{}, domain.E(domain.KindStorage, "query metrics summary", err)
	}

	return domain.MetricsSummary{
		TotalRecords:      row.TotalRecords,
		UniqueInfluencers: row.UniqueInfluencers,
		LatestCollection:  row.LatestCollection.String,
		AvgFollowers:      row.AvgFollowers.Float64,
		AvgEngagement:     row.AvgEngagement.Float64,
	}, nil
}

// RecentMetrics returns the subject's records collected within the last
// daysBack days, newest first.
func (s *Store) RecentMetrics(ctx context.Context, subjectID string, daysBack int) ([]domain.StoredMetrics, error) {
	const query = `
		SELECT m.influencer_name AS influencer_name,
		       m.collected_at    AS collected_at,
		       m.followers_count AS followers_count,
		       m.engagement_rate AS engagement_rate,
		       (SELECT COUNT(*) FROM metric_posts p WHERE p.record_id = m.id) AS post_count
		FROM influencer_metrics m
		WHERE m.influencer_name = ?
		  AND m.collected_at >= DATETIME('now', '-' || CAST(? AS TEXT) || ' days')
		ORDER BY m.collected_at DESC`

	var rows []struct {
		InfluencerName string    `db:"influencer_name"`
		CollectedAt    time.Time `db:"collected_at"`
		Followers      *int64    `db:"followers_count"`
		EngagementRate *float64  `db:"engagement_rate"`
		PostCount      int64     `db:"post_count"`
	}
	if err := s.db.SelectContext(ctx, &rows, query, subjectID, daysBack); err != nil {
		return nil, domain.E(domain.KindStorage, "query recent metrics", err)
	}

	out := make([]domain.StoredMetrics, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.StoredMetrics{
			SubjectID:      r.InfluencerName,
			CollectedAt:    r.CollectedAt,
			Followers:      r.Followers,
			EngagementRate: r.EngagementRate,
			PostCount:      r.PostCount,
		})
	}
	return out, nil
}

// SaveContract stores a parsed contract and one objective row per schedule
// entry, so the payment scanner can track delivery.
func (s *Store) SaveContract(ctx context.Context, fields domain.ContractFields) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return domain.E(domain.KindInternal, "encode contract fields", err)
	}

	dueDays := int64(defaultPaymentDueDays)
	if fields.PostDuration != nil && *fields.PostDuration > 0 {
		dueDays = *fields.PostDuration
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.E(domain.KindStorage, "begin contract save", err)
	}
	defer tx.Rollback()

	contractID := uuid.NewString()

	query, args, err := sq.Insert("contracts").
		Columns("contract_id", "client_name", "influencer_name",
			"total_fee", "currency", "payment_due_days", "fields_json").
		Values(contractID, fields.AgencyName, fields.ClientName,
			fields.TotalFee, fields.Currency, dueDays, string(raw)).
		ToSql()
	if err != nil {
		return domain.E(domain.KindStorage, "build contract insert", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return domain.E(domain.KindStorage, "insert contract", err)
	}

	for _, item := range fields.Schedule {
		query, args, err := sq.Insert("post_metrics_objectives").
			Columns("contract_id", "platform", "planned_date").
			Values(contractID, item.Platform, item.Date).
			ToSql()
		if err != nil {
			return domain.E(domain.KindStorage, "build objective insert", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return domain.E(domain.KindStorage, "insert objective", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.E(domain.KindStorage, "commit contract save", err)
	}
	return nil
}

// EligibleContracts finds unpaid contracts whose scheduled posts are all
// delivered and whose payment window has elapsed, excluding any contract
// already queued without failure.
func (s *Store) EligibleContracts(ctx context.Context) ([]domain.EligibleContract, error) {
	const query = `
		SELECT c.contract_id AS contract_id,
		       c.total_fee   AS total_fee,
		       c.currency    AS currency,
		       COUNT(o.id)   AS posts_required,
		       SUM(CASE WHEN o.posted = 1 THEN 1 ELSE 0 END) AS posts_completed
		FROM contracts c
		JOIN post_metrics_objectives o ON o.contract_id = c.contract_id
		WHERE c.contract_status = 'active'
		  AND c.payment_status != 'PAID'
		  AND c.total_fee IS NOT NULL
		  AND c.contract_id NOT IN (
			SELECT contract_id FROM payment_queue WHERE status != 'FAILED'
		  )
		GROUP BY c.contract_id
		HAVING COUNT(o.id) = SUM(CASE WHEN o.posted = 1 THEN 1 ELSE 0 END)
		   AND DATE(MAX(o.actual_post_date), '+' || CAST(c.payment_due_days AS TEXT) || ' days') <= DATE('now')`

	var rows []struct {
		ContractID     string  `db:"contract_id"`
		TotalFee       float64 `db:"total_fee"`
		Currency       string  `db:"currency"`
		PostsRequired  int64   `db:"posts_required"`
		PostsCompleted int64   `db:"posts_completed"`
	}
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, domain.E(domain.KindStorage, "query eligible contracts", err)
	}

	out := make([]domain.EligibleContract, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.EligibleContract{
			ContractID:     r.ContractID,
			Amount:         r.TotalFee,
			Currency:       r.Currency,
			PostsCompleted: r.PostsCompleted,
			PostsRequired:  r.PostsRequired,
		})
	}
	return out, nil
}

// EnqueuePayment adds a pending queue entry for the contract.
func (s *Store) EnqueuePayment(ctx context.Context, c domain.EligibleContract) error {
	query, args, err := sq.Insert("payment_queue").
		Columns("contract_id", "amount", "currency", "status").
		Values(c.ContractID, c.Amount, c.Currency, string(domain.QueuePending)).
		ToSql()
	if err != nil {
		return domain.E(domain.KindStorage, "build queue insert", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return domain.E(domain.KindStorage, "enqueue payment", err)
	}
	return nil
}

// PendingPayments returns up to limit queued payments, oldest first.
func (s *Store) PendingPayments(ctx context.Context, limit int) ([]domain.QueuedPayment, error) {
	query, args, err := sq.Select("contract_id", "amount", "currency", "status", "created_at").
		From("payment_queue").
		Where(sq.Eq{"status": string(domain.QueuePending)}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, domain.E(domain.KindStorage, "build queue select", err)
	}

	var rows []struct {
		ContractID string    `db:"contract_id"`
		Amount     float64   `db:"amount"`
		Currency   string    `db:"currency"`
		Status     string    `db:"status"`
		CreatedAt  time.Time `db:"created_at"`
	}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, domain.E(domain.KindStorage, "query pending payments", err)
	}

	out := make([]domain.QueuedPayment, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.QueuedPayment{
			ContractID: r.ContractID,
			Amount:     r.Amount,
			Currency:   r.Currency,
			Status:     domain.QueueStatus(r.Status),
			CreatedAt:  r.CreatedAt,
		})
	}
	return out, nil
}

// MarkPaymentCompleted flips the contract's pending queue entries to
// COMPLETED and stamps the processing time.
func (s *Store) MarkPaymentCompleted(ctx context.Context, contractID string) error {
	query, args, err := sq.Update("payment_queue").
		Set("status", string(domain.QueueCompleted)).
		Set("processed_at", time.Now().UTC()).
		Where(sq.Eq{"contract_id": contractID, "status": string(domain.QueuePending)}).
		ToSql()
	if err != nil {
		return domain.E(domain.KindStorage, "build queue update", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return domain.E(domain.KindStorage, "mark payment completed", err)
	}
	return nil
}

// MarkContractPaid records that the contract's fee has been settled.
func (s *Store) MarkContractPaid(ctx context.Context, contractID string) error {
	query, args, err := sq.Update("contracts").
		Set("payment_status", "PAID").
		Where(sq.Eq{"contract_id": contractID}).
		ToSql()
	if err != nil {
		return domain.E(domain.KindStorage, "build contract update", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return domain.E(domain.KindStorage, "mark contract paid", err)
	}
	return nil
}

// MarkObjectivePosted records delivery of one scheduled post. Used by tests
// and by future post-tracking hooks.
func (s *Store) MarkObjectivePosted(ctx context.Context, contractID string, postedAt time.Time) error {
	const query = `
		UPDATE post_metrics_objectives
		SET posted = 1, actual_post_date = ?
		WHERE id = (
			SELECT id FROM post_metrics_objectives
			WHERE contract_id = ? AND posted = 0
			ORDER BY id LIMIT 1
		)`
	if _, err := s.db.ExecContext(ctx, query, postedAt.UTC().Format("2006-01-02"), contractID); err != nil {
		return domain.E(domain.KindStorage, "mark objective posted", err)
	}
	return nil
}

// ContractIDs lists stored contract identifiers, newest first. Primarily a
// test seam.
func (s *Store) ContractIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.SelectContext(ctx, &ids, `SELECT contract_id FROM contracts ORDER BY created_at DESC`); err != nil {
		return nil, domain.E(domain.KindStorage, "query contract ids", err)
	}
	return ids, nil
}
