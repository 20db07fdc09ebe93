package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/nmdb/internal/shared"
	"github.com/desertthunder/nmdb/internal/ui"
	"github.com/urfave/cli/v3"
)

// SectionsPull downloads the account's curated home sections and saves them as the sections document.
//
// The bearer token comes from NMDB_TOKEN or a cURL command captured from the browser (--curl-file);
// the user ID from --user-id, api.user_id or the captured URL.
func (r *Runner) SectionsPull(ctx context.Context, cmd *cli.Command) error {
	token := r.config.API.Token
	userID := cmd.String("user-id")
	if userID == "" {
		userID = r.config.API.UserID
	}

	if curlFile := cmd.String("curl-file"); curlFile != "" {
		req, err := shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Debug("parsed cURL from file", "file", curlFile, "url", req.URL)

		if t := req.BearerToken(); t != "" {
			token = t
		}
		if userID == "" {
			userID = req.UserID()
		}
		if ua := req.UserAgent(); ua != "" {
			r.config.API.UserAgent = ua
		}
	}

	if token == "" {
		return fmt.Errorf("%w: set %s or pass --curl-file", shared.ErrMissingCredentials, shared.EnvToken)
	}
	if userID == "" {
		return fmt.Errorf("%w: pass --user-id or set api.user_id", shared.ErrMissingArgument)
	}

	locale, err := shared.NormalizeLocale(cmd.String("locale"))
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" {
		output = r.config.Export.SectionsPath
	}
	if output == "" {
		return fmt.Errorf("%w: pass --output or set export.sections_path", shared.ErrMissingArgument)
	}

	r.logger.Info("pulling home sections", "user", userID, "locale", locale)

	doc, body, err := r.service().HomeSections(ctx, locale, userID, token)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		return fmt.Errorf("failed to format sections document: %w", err)
	}
	pretty.WriteByte('\n')

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(output, pretty.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write sections document: %w", err)
	}

	r.logger.Info("sections document saved", "path", output)
	r.writePlain("%s saved %d misc and %d common sections to %s\n",
		ui.OK("✓"), len(doc.MiscSections), len(doc.CommonSections), output)
	return nil
}
