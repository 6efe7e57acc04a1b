package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hitbuilder/internal/hit"
	"hitbuilder/internal/server/core/model"
)

func newParseCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse [hit|-]",
		Short: "Split a hit into parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readHit(cmd, args)
			if err != nil {
				return err
			}

			m := model.New(raw)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), m.Snapshot(""))
			}

			return writeParameters(cmd.OutOrStdout(), m)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print parameters as json")

	return cmd
}

func newValidateCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate [hit|-]",
		Short: "Validate a hit against the debug endpoint",
		Long:  "Validate a hit against the debug endpoint. Exits with status 1 when the hit is invalid.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readHit(cmd, args)
			if err != nil {
				return err
			}

			m, err := opts.validate(cmd.Context(), model.New(raw))
			if err != nil {
				return err
			}

			if asJSON {
				err = writeJSON(cmd.OutOrStdout(), m.Snapshot(""))
			} else {
				err = writeParameters(cmd.OutOrStdout(), m)
			}
			if err != nil {
				return err
			}

			if m.Status() != model.StatusValid {
				return errInvalid
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print result as json")

	return cmd
}

func newSendCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "send [hit|-]",
		Short: "Validate a hit and send it to the collect endpoint",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readHit(cmd, args)
			if err != nil {
				return err
			}

			m, err := opts.validate(cmd.Context(), model.New(raw))
			if err != nil {
				return err
			}

			if m.Status() != model.StatusValid {
				_ = writeParameters(cmd.OutOrStdout(), m)
				return errInvalid
			}

			m, payload, err := m.BeginSend()
			if err != nil {
				return fmt.Errorf("can't send hit: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout())
			defer cancel()

			sendErr := opts.client().Send(ctx, payload)
			m = m.FinishSend(payload, sendErr == nil)
			if sendErr != nil {
				return sendErr //nolint:wrapcheck
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", m.Status(), payload)
			return err //nolint:wrapcheck
		},
	}
}

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List known hit types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, t := range hit.Types {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), t); err != nil {
					return err //nolint:wrapcheck
				}
			}

			return nil
		},
	}
}

func (o *options) validate(ctx context.Context, m model.HitModel) (model.HitModel, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout())
	defer cancel()

	m, payload := m.BeginValidation()

	result, err := o.client().Validate(ctx, payload)
	if err != nil {
		return m.AbortValidation(), fmt.Errorf("could not reach validation service: %w", err)
	}

	m, _ = m.ApplyValidation(result)

	return m, nil
}

func writeParameters(out io.Writer, m model.HitModel) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "STATUS\t%s\n", m.Status())
	fmt.Fprintln(w, "NAME\tVALUE\tERROR")

	for _, p := range m.Parameters() {
		name := p.Name
		if p.Required {
			name += "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, p.Value, p.Error)
	}

	for _, msg := range m.Messages() {
		if msg.Param == "" || !m.HasParameter(msg.Param) {
			fmt.Fprintf(w, "%s\t%s\t%s\n", msg.Type, msg.Code, msg.Description)
		}
	}

	return w.Flush() //nolint:wrapcheck
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}

	return nil
}
