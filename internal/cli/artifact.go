package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewArtifactCmd создаёт группу команд для работы с артефактами.
func NewArtifactCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifact",
		Short: "Manage artifacts",
	}

	cmd.AddCommand(
		newArtifactListCmd(clientFn, outputFn),
		newArtifactShowCmd(clientFn, outputFn),
		newArtifactDownloadCmd(clientFn, outputFn),
	)

	return cmd
}

func newArtifactListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List artifacts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			artifacts, err := client.ListArtifacts()
			if err != nil {
				return err
			}

			headers := []string{"ID", "TYPE", "FILENAME", "BYTES", "CREATED"}
			rows := make([][]string, len(artifacts))
			for i, a := range artifacts {
				rows[i] = []string{a.ID, a.Type, a.Filename, strconv.FormatInt(a.Bytes, 10), a.CreatedAt}
			}

			out.Print(headers, rows, artifacts)
			return nil
		},
	}
}

func newArtifactShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show artifact metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			artifact, err := client.GetArtifact(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "TYPE", "FILENAME", "MIME", "BYTES", "CREATED"},
				[][]string{{
					artifact.ID, artifact.Type, artifact.Filename,
					artifact.Mime, strconv.FormatInt(artifact.Bytes, 10), artifact.CreatedAt,
				}},
				artifact,
			)
			return nil
		},
	}
}

func newArtifactDownloadCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "download ID",
		Short: "Download artifact content to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			// Имя файла по умолчанию берём из метаданных.
			path := outputPath
			if path == "" {
				artifact, err := client.GetArtifact(args[0])
				if err != nil {
					return err
				}
				path = artifact.Filename
			}

			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()

			n, err := client.DownloadArtifact(args[0], f)
			if err != nil {
				os.Remove(path)
				return err
			}

			out.Success(fmt.Sprintf("Downloaded %s (%d bytes)", path, n))
			return nil
		},
	}

	cmd.Flags().StringVar(&outputPath, "output", "", "Output file path (artifact filename if not set)")

	return cmd
}
