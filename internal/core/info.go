package core

import (
	"context"
	"fmt"

	"github.com/reecem02/relational-db/internal/database"
	"gonum.org/v1/gonum/stat"
)

// Info collects table statistics and sequence length figures.
func (s *Service) Info(ctx context.Context) (DatabaseInfo, error) {
	q := s.db.Queries()
	info := DatabaseInfo{Driver: s.driver, Location: s.db.Path}
	if info.Location == "" {
		info.Location = "postgres"
	}

	tables := []struct {
		name string
		stat func(context.Context) (database.TableStat, error)
	}{
		{database.TableMetadata, q.MetadataStat},
		{database.TableGenomic, q.GenomicStat},
	}
	for _, t := range tables {
		st, err := t.stat(ctx)
		if err != nil {
			return info, fmt.Errorf("%s stats: %w", t.name, err)
		}
		info.Tables = append(info.Tables, TableInfo{
			Name:         t.name,
			Rows:         st.Rows,
			LastUploaded: st.LastUploaded.String,
		})
	}

	var err error
	if info.LabIDs, err = q.CountLabIDs(ctx); err != nil {
		return info, fmt.Errorf("count lab ids: %w", err)
	}
	if info.Imports, err = q.CountUploads(ctx); err != nil {
		return info, fmt.Errorf("count imports: %w", err)
	}

	lengths, err := q.SequenceLengths(ctx)
	if err != nil {
		return info, fmt.Errorf("sequence lengths: %w", err)
	}
	info.Sequences = sequenceStats(lengths)

	info.SizeBytes, info.SizeKnown = s.db.SizeBytes()
	return info, nil
}

// sequenceStats summarizes lengths. The standard deviation is the sample
// deviation and is zero for fewer than two sequences.
func sequenceStats(lengths []int) SequenceStats {
	st := SequenceStats{Count: len(lengths)}
	if len(lengths) == 0 {
		return st
	}

	xs := make([]float64, len(lengths))
	st.Min, st.Max = lengths[0], lengths[0]
	for i, n := range lengths {
		xs[i] = float64(n)
		st.TotalBases += n
		if n < st.Min {
			st.Min = n
		}
		if n > st.Max {
			st.Max = n
		}
	}

	st.Mean = stat.Mean(xs, nil)
	if len(xs) > 1 {
		st.StdDev = stat.StdDev(xs, nil)
	}
	return st
}
