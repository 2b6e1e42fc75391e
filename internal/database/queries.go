package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// likeEscape is the ESCAPE character used in keyword patterns.
const likeEscape = "!"

// labIDMatch compares lab IDs case-insensitively. Lab IDs are ASCII, so
// LOWER behaves the same on SQLite and Postgres.
const labIDMatch = "LOWER(lab_id) = LOWER(?)"

// Queries runs statements against a connection or a transaction.
type Queries struct {
	db bun.IDB
}

// New returns a query set bound to db, which may be a *bun.DB or a bun.Tx.
func New(db bun.IDB) *Queries {
	return &Queries{db: db}
}

// TableStat is the row count and newest timestamp of one table.
type TableStat struct {
	Rows         int
	LastUploaded sql.NullString
}

// ContainsPattern builds a case-insensitive LIKE pattern matching keyword
// anywhere in a value. Wildcards in keyword are matched literally.
func ContainsPattern(keyword string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return "%" + r.Replace(strings.ToLower(keyword)) + "%"
}

// whereContains ORs a lowercased col LIKE pattern test over columns.
func (q *Queries) whereContains(sq *bun.SelectQuery, columns []string, pattern string) *bun.SelectQuery {
	lower := "LOWER"
	if q.db.Dialect().Name() == dialect.SQLite {
		lower = sqliteLower
	}
	return sq.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
		for _, col := range columns {
			sq = sq.WhereOr(lower+"(?) LIKE ? ESCAPE '"+likeEscape+"'", bun.Ident(col), pattern)
		}
		return sq
	})
}

func rowsAffected(res sql.Result) int64 {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

/* ----------------------------------------
	METADATA
---------------------------------------- */

// GetMetadata returns a lab ID's attributes in insertion order.
func (q *Queries) GetMetadata(ctx context.Context, labID string) ([]Metadata, error) {
	var rows []Metadata
	err := q.db.NewSelect().
		Model(&rows).
		Where(labIDMatch, labID).
		Order("id").
		Scan(ctx)
	return rows, err
}

// GetMetadataForLabIDs returns the attributes of several lab IDs, matched
// case-insensitively.
func (q *Queries) GetMetadataForLabIDs(ctx context.Context, labIDs []string) ([]Metadata, error) {
	var rows []Metadata
	if len(labIDs) == 0 {
		return rows, nil
	}
	lowered := make([]string, len(labIDs))
	for i, id := range labIDs {
		lowered[i] = strings.ToLower(id)
	}
	err := q.db.NewSelect().
		Model(&rows).
		Where("LOWER(lab_id) IN (?)", bun.In(lowered)).
		Order("id").
		Scan(ctx)
	return rows, err
}

// MetadataExists reports whether a lab ID has any metadata.
func (q *Queries) MetadataExists(ctx context.Context, labID string) (bool, error) {
	return q.db.NewSelect().
		Model((*Metadata)(nil)).
		Where(labIDMatch, labID).
		Exists(ctx)
}

// InsertMetadata inserts attribute rows.
func (q *Queries) InsertMetadata(ctx context.Context, rows []Metadata) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := q.db.NewInsert().Model(&rows).Exec(ctx)
	return err
}

// DeleteMetadata removes every attribute of a lab ID.
func (q *Queries) DeleteMetadata(ctx context.Context, labID string) (int64, error) {
	res, err := q.db.NewDelete().
		Model((*Metadata)(nil)).
		Where(labIDMatch, labID).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

// SearchMetadataLabIDs returns lab IDs with any metadata text containing keyword.
func (q *Queries) SearchMetadataLabIDs(ctx context.Context, keyword string, limit int) ([]string, error) {
	var ids []string
	query := q.db.NewSelect().
		Model((*Metadata)(nil)).
		Column("lab_id").
		Distinct()
	query = q.whereContains(query, SearchColumns[TableMetadata], ContainsPattern(keyword)).
		Order("lab_id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Scan(ctx, &ids)
	return ids, err
}

/* ----------------------------------------
	GENOMIC DATA
---------------------------------------- */

// GetGenomicData returns a lab ID's sequences in storage order.
// limit <= 0 returns all of them.
func (q *Queries) GetGenomicData(ctx context.Context, labID string, limit int) ([]GenomicData, error) {
	var rows []GenomicData
	query := q.db.NewSelect().
		Model(&rows).
		Where(labIDMatch, labID).
		Order("seq_index", "id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Scan(ctx)
	return rows, err
}

// CountGenomicData returns how many sequences a lab ID has.
func (q *Queries) CountGenomicData(ctx context.Context, labID string) (int, error) {
	return q.db.NewSelect().
		Model((*GenomicData)(nil)).
		Where(labIDMatch, labID).
		Count(ctx)
}

// GenomicExists reports whether a lab ID already stores a sequence ID.
func (q *Queries) GenomicExists(ctx context.Context, labID, sequenceID string) (bool, error) {
	return q.db.NewSelect().
		Model((*GenomicData)(nil)).
		Where(labIDMatch, labID).
		Where("sequence_id = ?", sequenceID).
		Exists(ctx)
}

// NextSeqIndex returns one past the highest seq_index of a lab ID, or 0.
func (q *Queries) NextSeqIndex(ctx context.Context, labID string) (int, error) {
	var next int
	err := q.db.NewSelect().
		Model((*GenomicData)(nil)).
		ColumnExpr("COALESCE(MAX(?), -1) + 1", bun.Ident("seq_index")).
		Where(labIDMatch, labID).
		Scan(ctx, &next)
	return next, err
}

// InsertGenomicData inserts sequence rows.
func (q *Queries) InsertGenomicData(ctx context.Context, rows []GenomicData) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := q.db.NewInsert().Model(&rows).Exec(ctx)
	return err
}

// DeleteGenomicData removes every sequence of a lab ID.
func (q *Queries) DeleteGenomicData(ctx context.Context, labID string) (int64, error) {
	res, err := q.db.NewDelete().
		Model((*GenomicData)(nil)).
		Where(labIDMatch, labID).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

// DeleteSequence removes one sequence of a lab ID.
func (q *Queries) DeleteSequence(ctx context.Context, labID, sequenceID string) (int64, error) {
	res, err := q.db.NewDelete().
		Model((*GenomicData)(nil)).
		Where(labIDMatch, labID).
		Where("sequence_id = ?", sequenceID).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

// SearchGenomicData returns sequences whose text columns contain keyword.
func (q *Queries) SearchGenomicData(ctx context.Context, keyword string, limit int) ([]GenomicData, error) {
	var rows []GenomicData
	query := q.whereContains(q.db.NewSelect().Model(&rows), SearchColumns[TableGenomic], ContainsPattern(keyword)).
		Order("lab_id", "seq_index", "id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Scan(ctx)
	return rows, err
}

// SequenceLengths returns the length of every stored sequence.
func (q *Queries) SequenceLengths(ctx context.Context) ([]int, error) {
	var lengths []int
	err := q.db.NewSelect().
		Model((*GenomicData)(nil)).
		ColumnExpr("COALESCE(LENGTH(?), 0)", bun.Ident("sequence")).
		Scan(ctx, &lengths)
	return lengths, err
}

/* ----------------------------------------
	UPLOADS
---------------------------------------- */

// InsertUpload records an import in the ledger.
func (q *Queries) InsertUpload(ctx context.Context, upload *Upload) error {
	_, err := q.db.NewInsert().Model(upload).Exec(ctx)
	return err
}

// GetUpload returns a ledger entry. Missing IDs return sql.ErrNoRows.
func (q *Queries) GetUpload(ctx context.Context, id string) (Upload, error) {
	var upload Upload
	err := q.db.NewSelect().
		Model(&upload).
		Where("id = ?", id).
		Scan(ctx)
	return upload, err
}

// ListUploads returns ledger entries, newest first.
func (q *Queries) ListUploads(ctx context.Context, limit int) ([]Upload, error) {
	var uploads []Upload
	query := q.db.NewSelect().
		Model(&uploads).
		OrderExpr("uploaded_at DESC, id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Scan(ctx)
	return uploads, err
}

// DeleteUpload removes a ledger entry.
func (q *Queries) DeleteUpload(ctx context.Context, id string) error {
	_, err := q.db.NewDelete().
		Model((*Upload)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// DeleteMetadataByUpload removes the attributes written by an import.
func (q *Queries) DeleteMetadataByUpload(ctx context.Context, uploadID string) (int64, error) {
	res, err := q.db.NewDelete().
		Model((*Metadata)(nil)).
		Where("upload_id = ?", uploadID).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

// DeleteGenomicByUpload removes the sequences written by an import.
func (q *Queries) DeleteGenomicByUpload(ctx context.Context, uploadID string) (int64, error) {
	res, err := q.db.NewDelete().
		Model((*GenomicData)(nil)).
		Where("upload_id = ?", uploadID).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

/* ----------------------------------------
	STATS
---------------------------------------- */

// MetadataStat returns the metadata row count and newest timestamp.
func (q *Queries) MetadataStat(ctx context.Context) (TableStat, error) {
	return q.tableStat(ctx, (*Metadata)(nil))
}

// GenomicStat returns the genomic row count and newest timestamp.
func (q *Queries) GenomicStat(ctx context.Context) (TableStat, error) {
	return q.tableStat(ctx, (*GenomicData)(nil))
}

func (q *Queries) tableStat(ctx context.Context, model interface{}) (TableStat, error) {
	var stat TableStat
	err := q.db.NewSelect().
		Model(model).
		ColumnExpr("COUNT(*)").
		ColumnExpr("MAX(?)", bun.Ident("file_uploaded")).
		Scan(ctx, &stat.Rows, &stat.LastUploaded)
	return stat, err
}

// CountLabIDs returns the number of distinct lab IDs with metadata.
func (q *Queries) CountLabIDs(ctx context.Context) (int, error) {
	var n int
	err := q.db.NewSelect().
		Model((*Metadata)(nil)).
		ColumnExpr("COUNT(DISTINCT ?)", bun.Ident("lab_id")).
		Scan(ctx, &n)
	return n, err
}

// CountUploads returns the number of ledger entries.
func (q *Queries) CountUploads(ctx context.Context) (int, error) {
	return q.db.NewSelect().Model((*Upload)(nil)).Count(ctx)
}

/* ----------------------------------------
	RESET
---------------------------------------- */

// ResetMetadata deletes all metadata.
func (q *Queries) ResetMetadata(ctx context.Context) error {
	_, err := q.db.NewDelete().Model((*Metadata)(nil)).Where("1 = 1").Exec(ctx)
	return err
}

// ResetGenomicData deletes all sequences.
func (q *Queries) ResetGenomicData(ctx context.Context) error {
	_, err := q.db.NewDelete().Model((*GenomicData)(nil)).Where("1 = 1").Exec(ctx)
	return err
}

// ResetUploads clears the import ledger.
func (q *Queries) ResetUploads(ctx context.Context) error {
	_, err := q.db.NewDelete().Model((*Upload)(nil)).Where("1 = 1").Exec(ctx)
	return err
}
