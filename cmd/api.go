package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/filmhub/internal/services"
	"github.com/desertthunder/filmhub/internal/shared"
	"github.com/desertthunder/filmhub/internal/tasks"
)

// APIGet makes a direct GET request to the filmhub API
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.raw.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if err := checkStatus(resp); err != nil {
		return err
	}

	return r.writeRaw(resp, !cmd.Bool("compact"))
}

// APIPost makes a direct POST request with a JSON body
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")

	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}
	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}
	if err := validJSON(data); err != nil {
		return err
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	r.logger.Info("POST request", "path", path)

	resp, err := r.raw.Post(ctx, path, []byte(data))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if err := checkStatus(resp); err != nil {
		return err
	}

	return r.writeRaw(resp, true)
}

// APIDump fetches every account endpoint and prints the combined result.
func (r *Runner) APIDump(ctx context.Context, cmd *cli.Command) error {
	pretty := cmd.Bool("pretty")
	save := cmd.String("save")

	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	r.logger.Info("dumping API state")
	r.writePlain("Fetching account state...\n\n")

	progressCh := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("📥 [%d/%d] %s\n", update.Step, update.Total, update.Message)
		}
	}()

	result, err := r.engine.Dump(ctx, progressCh, r.raw)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n✓ Dump complete")
	if n := len(result.Errors); n > 0 {
		r.writePlain(" (%d endpoints failed)", n)
	}
	r.writePlain("\n\n")

	dump := result.Data()
	if save != "" {
		data, err := shared.MarshalJSON(dump, true)
		if err != nil {
			return fmt.Errorf("failed to marshal dump: %w", err)
		}
		if err := os.WriteFile(save, data, 0644); err != nil {
			r.logger.Warn("failed to save dump", "error", err)
		} else {
			r.logger.Info("dump saved", "file", save)
			r.writePlain("✓ Dump saved to %s\n\n", save)
		}
	}

	return r.writeJSON(dump, pretty)
}

func checkStatus(resp *services.RawResponse) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}
	return nil
}
