package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/youssefsiam38/volumetric"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		propsFile string
		sessionID string
		strict    bool
	)

	cmd := &cobra.Command{
		Use:   "render KEY",
		Short: "Render a template to stdout",
		Long: `Render one template with the given props and print the panel HTML.

Props are read from --props (a file, or - for stdin); without it the
template renders with its defaults. A fallback panel is still printed when
the key is unknown or the props are malformed, and the command fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := readProps(cmd.InOrStdin(), propsFile)
			if err != nil {
				return err
			}
			req := &volumetric.NavigationRequest{
				SessionID:   sessionID,
				TemplateKey: args[0],
				Props:       props,
			}
			if err := req.Normalize(); err != nil {
				return err
			}

			host, err := newCatalogHost(&volumetric.Config{Logger: a.logger, StrictProps: strict})
			if err != nil {
				return err
			}

			result := host.Render(cmd.Context(), cmd.OutOrStdout(), req, &volumetric.View{SessionID: sessionID})
			fmt.Fprintln(cmd.OutOrStdout())
			if result.Fallback {
				return fmt.Errorf("rendered fallback panel (%s): %w", result.Kind, result.Err)
			}
			a.logger.Debug("rendered", "template", result.Key, "bytes", result.Bytes, "duration", result.Duration)
			return nil
		},
	}

	cmd.Flags().StringVarP(&propsFile, "props", "p", "", "JSON props file, or - for stdin")
	cmd.Flags().StringVar(&sessionID, "session", "cli", "session id used in action endpoints")
	cmd.Flags().BoolVar(&strict, "strict", false, "render the fallback panel on schema violations")
	return cmd
}

func readProps(stdin io.Reader, path string) (json.RawMessage, error) {
	switch path {
	case "":
		return nil, nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read props: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read props: %w", err)
	}
	return data, nil
}
