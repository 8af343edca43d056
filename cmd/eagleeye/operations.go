package main

import (
	"errors"
	"fmt"

	"github.com/ALT-F4-LLC/eagleeye/internal/model"
	"github.com/ALT-F4-LLC/eagleeye/internal/output"
	"github.com/ALT-F4-LLC/eagleeye/internal/store"
	"github.com/spf13/cobra"
)

// errCancelled aborts an update after the user declined a prompt.
var errCancelled = errors.New("cancelled")

// loadOperations reads the persisted list and reports anything the store
// had to set aside. It never fails on bad data, only on storage errors.
func loadOperations(cmd *cobra.Command) ([]model.Operation, *store.LoadResult, error) {
	w := getWriter(cmd)

	res, err := getStore(cmd).LoadOperations(cmd.Context())
	if err != nil {
		return nil, nil, cmdErr(fmt.Errorf("loading operations: %w", err), output.ErrGeneral)
	}

	if res.Corrupt {
		w.Warn("Stored operation list is unreadable and was ignored (%s). Use 'eagleeye dump' to inspect it.", res.CorruptReason)
	}
	for _, q := range res.Quarantined {
		w.Warn("Skipped invalid operation record %d %s: %s (kept in storage, --force drops it on the next save)", q.Index, model.ShortID(q.ID), q.Reason)
	}
	return res.Operations, res, nil
}

// saveOperations persists ops. On a quota failure the returned error carries
// echo so JSON callers still receive the change that could not be stored.
func saveOperations(cmd *cobra.Command, ops []model.Operation, echo any) error {
	err := getStore(cmd).SaveOperations(cmd.Context(), ops)
	if err == nil {
		return nil
	}
	return classifySaveError(err, echo)
}

func classifySaveError(err error, echo any) *CmdError {
	var qe *store.QuotaError
	var ve *store.ValidationError
	switch {
	case errors.As(err, &qe):
		return &CmdError{
			Err:  fmt.Errorf("%w; the change was not saved, remove photos or old operations and try again", qe),
			Code: output.ErrQuota,
			Data: echo,
		}
	case errors.As(err, &ve):
		return cmdErr(ve, output.ErrValidation)
	case errors.Is(err, store.ErrCorrupt):
		return cmdErr(fmt.Errorf("%w; rerun with --force to replace it", err), output.ErrConflict)
	default:
		return cmdErr(fmt.Errorf("saving operations: %w", err), output.ErrGeneral)
	}
}

// resolveError maps a lookup failure to the matching error code.
func resolveError(err error) *CmdError {
	if errors.Is(err, model.ErrNotFound) {
		return cmdErr(err, output.ErrNotFound)
	}
	return cmdErr(err, output.ErrValidation)
}

// findOperation loads the list and resolves ref to an index into it.
func findOperation(cmd *cobra.Command, ref string) ([]model.Operation, int, error) {
	ops, _, err := loadOperations(cmd)
	if err != nil {
		return nil, -1, err
	}
	idx, err := model.MatchID(ops, ref)
	if err != nil {
		return nil, -1, resolveError(err)
	}
	return ops, idx, nil
}

// updateOperation applies fn to a copy of the referenced operation, replaces
// it by id and saves the whole list. The operation keeps its position.
func updateOperation(cmd *cobra.Command, ref string, fn func(op *model.Operation) error) (model.Operation, error) {
	ops, idx, err := findOperation(cmd, ref)
	if err != nil {
		return model.Operation{}, err
	}

	op := ops[idx].Clone()
	if err := fn(&op); err != nil {
		var ce *CmdError
		if errors.As(err, &ce) {
			return op, ce
		}
		return op, resolveError(err)
	}
	if err := op.Validate(); err != nil {
		return op, cmdErr(err, output.ErrValidation)
	}

	updated, err := model.ReplaceByID(ops, op)
	if err != nil {
		return op, resolveError(err)
	}
	if err := saveOperations(cmd, updated, op); err != nil {
		return op, err
	}
	return op, nil
}

// flagString returns the cleaned value of a string flag and whether the
// user set it.
func flagString(cmd *cobra.Command, name string) (string, bool) {
	if !cmd.Flags().Changed(name) {
		return "", false
	}
	v, _ := cmd.Flags().GetString(name)
	return model.CleanText(v), true
}
