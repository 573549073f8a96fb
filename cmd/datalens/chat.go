package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	assistant "github.com/datalens-ai/datalens"
	"github.com/datalens-ai/datalens/src/config"
)

func chatCmd() *cobra.Command {
	var dataPath string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive REPL against a local session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			a, st, log, err := buildAssistant(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())
			defer log.Sync()

			sess := assistant.NewSession(uuid.NewString())
			if dataPath != "" {
				if err := loadFile(ctx, a, sess, dataPath); err != nil {
					return err
				}
			}
			return repl(ctx, a, sess)
		},
	}
	cmd.Flags().StringVar(&dataPath, "data", "", "CSV or JSON file to load at startup")
	return cmd
}

func loadFile(ctx context.Context, a *assistant.Assistant, sess *assistant.Session, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	summary, err := a.LoadDataset(ctx, sess, &assistant.Attachment{
		Name: filepath.Base(path),
		Data: data,
	})
	if err != nil {
		return err
	}
	fmt.Println(summary)
	return nil
}

func repl(ctx context.Context, a *assistant.Assistant, sess *assistant.Session) error {
	fmt.Println("datalens chat. /load <file> to load a dataset, /quit to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit", line == "/exit":
			return nil
		case strings.HasPrefix(line, "/load "):
			path := strings.TrimSpace(strings.TrimPrefix(line, "/load "))
			if err := loadFile(ctx, a, sess, path); err != nil {
				fmt.Fprintln(os.Stderr, "load failed:", err)
			}
			continue
		}

		reply, err := a.HandleTurn(ctx, sess, assistant.Turn{Text: line})
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		for _, inv := range reply.Invocations {
			fmt.Printf("  [%s]\n", inv.Name)
		}
		fmt.Println(reply.Text)
	}
}
