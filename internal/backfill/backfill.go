// Package backfill restores local_path and folder_name on uploaded documents
// by matching them against metadata-only documents of the same owner.
package backfill

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"docsync/internal/model"
	"docsync/internal/repository"
)

// Report summarizes a run.
type Report struct {
	Owners    int `json:"owners"`
	Checked   int `json:"checked"`
	Updated   int `json:"updated"`
	Unmatched int `json:"unmatched"`
	Ambiguous int `json:"ambiguous"`
}

// Job runs the backfill over every owner.
type Job struct {
	repo   repository.DocumentRepository
	log    *zap.Logger
	dryRun bool
}

// New returns a Job. With dryRun set nothing is written.
func New(repo repository.DocumentRepository, log *zap.Logger, dryRun bool) *Job {
	if log == nil {
		log = zap.NewNop()
	}
	return &Job{repo: repo, log: log.With(zap.String("component", "backfill")), dryRun: dryRun}
}

// Run processes owners one at a time and stops at the first repository error.
func (j *Job) Run(ctx context.Context) (Report, error) {
	var rep Report

	owners, err := j.repo.Owners(ctx)
	if err != nil {
		return rep, fmt.Errorf("list owners: %w", err)
	}

	for _, owner := range owners {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if err := j.runOwner(ctx, owner, &rep); err != nil {
			return rep, fmt.Errorf("owner %s: %w", owner, err)
		}
		rep.Owners++
	}

	j.log.Info("backfill_finished",
		zap.Bool("dry_run", j.dryRun),
		zap.Int("owners", rep.Owners),
		zap.Int("checked", rep.Checked),
		zap.Int("updated", rep.Updated),
		zap.Int("unmatched", rep.Unmatched),
		zap.Int("ambiguous", rep.Ambiguous),
	)
	return rep, nil
}

func (j *Job) runOwner(ctx context.Context, owner string, rep *Report) error {
	// newest first, so the first match per name is the most recent
	docs, err := j.repo.ListByOwner(ctx, owner, repository.ListFilter{})
	if err != nil {
		return err
	}

	sources := make(map[string][]model.Document)
	for _, d := range docs {
		if d.State.MetadataOnly() && d.LocalPath != "" {
			sources[d.DisplayName] = append(sources[d.DisplayName], d)
		}
	}

	for _, d := range docs {
		if _, stored := model.ObjectOf(d.State); !stored || d.LocalPath != "" {
			continue
		}
		rep.Checked++

		matches := sources[d.DisplayName]
		if len(matches) == 0 {
			rep.Unmatched++
			j.log.Debug("backfill_no_match", zap.String("document_id", d.ID), zap.String("file_name", d.DisplayName))
			continue
		}
		src := matches[0]
		if len(matches) > 1 {
			rep.Ambiguous++
			j.log.Warn("backfill_ambiguous_match",
				zap.String("document_id", d.ID),
				zap.String("file_name", d.DisplayName),
				zap.Int("candidates", len(matches)),
				zap.String("chosen_id", src.ID),
			)
		}

		folder := src.FolderName
		if folder == "" {
			folder = model.FolderOf(src.LocalPath)
		}
		patch := model.Patch{LocalPath: &src.LocalPath, FolderName: &folder}
		merged, err := patch.Apply(d)
		if err != nil {
			return err
		}

		if !j.dryRun {
			if _, err := j.repo.Update(ctx, merged); err != nil {
				return err
			}
		}
		rep.Updated++
		j.log.Info("backfill_updated",
			zap.Bool("dry_run", j.dryRun),
			zap.String("document_id", d.ID),
			zap.String("local_path", src.LocalPath),
		)
	}
	return nil
}
