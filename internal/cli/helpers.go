package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/inventory"
	"github.com/mesh-intelligence/shelf/internal/metrics"
	"github.com/mesh-intelligence/shelf/internal/remote"
	"github.com/mesh-intelligence/shelf/pkg/store"
	"github.com/mesh-intelligence/shelf/pkg/types"
	"github.com/mesh-intelligence/shelf/pkg/validator"
)

// storeConfig returns the LocalStore config for this invocation.
func (a *app) storeConfig() (types.Config, error) {
	dataDir, err := a.resolveDataDir()
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	return types.Config{Backend: a.config.Backend, DataDir: dataDir}, nil
}

// withInventory attaches the configured store, builds an inventory over it
// and the remote collection, and runs fn. The store is detached afterwards.
func (a *app) withInventory(m *metrics.Metrics, fn func(inv *inventory.Inventory) error) error {
	cfg, err := a.storeConfig()
	if err != nil {
		return sysError(err)
	}
	local, err := store.Open(cfg, a.logger)
	if err != nil {
		return sysError(err)
	}
	defer func() {
		if err := local.Detach(); err != nil {
			a.logger.Sugar().Warnf("detach store: %v", err)
		}
	}()

	opts := []inventory.Option{
		inventory.WithLogger(a.logger),
		inventory.WithMetrics(m),
		inventory.WithPromoteRemote(a.config.PromoteRemote),
	}
	if a.config.Remote.BaseURL != "" {
		client, err := remote.New(a.config.Remote.BaseURL,
			remote.WithTimeout(a.config.Remote.Timeout),
			remote.WithLogger(a.logger),
		)
		if err != nil {
			return sysError(fmt.Errorf("remote: %w", err))
		}
		opts = append(opts, inventory.WithRemote(client))
	}

	return fn(inventory.New(local, opts...))
}

// classify wraps an inventory error with its exit code.
func classify(err error) error {
	var verrs types.ValidationErrors
	switch {
	case err == nil:
		return nil
	case errors.As(err, &verrs),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidID):
		return userError(err)
	default:
		return sysError(err)
	}
}

// readBookArg parses a book from a JSON argument, or from stdin when the
// argument is "-".
func readBookArg(cmd *cobra.Command, arg string) (types.Book, error) {
	data := []byte(arg)
	if arg == "-" {
		var err error
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return types.Book{}, userError(fmt.Errorf("read stdin: %w", err))
		}
	}

	var b types.Book
	if err := json.Unmarshal(data, &b); err != nil {
		return types.Book{}, userError(fmt.Errorf("parse book JSON: %w", err))
	}
	return b, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal output: %w", err))
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// printValidation writes field errors one per line, sorted by field.
func printValidation(w io.Writer, errs types.ValidationErrors) {
	for _, f := range sortedKeys(errs) {
		fmt.Fprintf(w, "  %s: %s\n", f, errs[f])
	}
}

// validateOrFail reports field errors for b and returns a user error when
// there are any.
func validateOrFail(cmd *cobra.Command, b types.Book) error {
	errs := validator.Book(&b)
	if len(errs) == 0 {
		return nil
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "invalid book:")
	printValidation(cmd.ErrOrStderr(), errs)
	return userError(fmt.Errorf("%d invalid field(s): %s", len(errs), strings.Join(sortedKeys(errs), ", ")))
}

func sortedKeys(errs types.ValidationErrors) []string {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
