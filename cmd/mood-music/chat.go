package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/justestif/go-mood-music/internal/conversation"
	"github.com/justestif/go-mood-music/internal/lexicon"
	"github.com/justestif/go-mood-music/internal/playback"
	"github.com/justestif/go-mood-music/internal/search"
)

const chatHelp = `commands:
  /next          play the next track
  /prev          play the previous track
  /play <id>     play a listed track
  /toggle        pause or resume
  /fail          report that the current track did not play
  /emotion <e>   set the detected emotion, as a camera would
  /quit          leave`

func newChatCmd(configPath *string) *cobra.Command {
	var emotion string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the companion in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			st, err := buildStack(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			var initial *lexicon.Emotion
			if emotion != "" {
				e := lexicon.Normalize(emotion)
				initial = &e
			}
			return runChat(ctx, st.engine, initial, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&emotion, "emotion", "", "initial detected emotion (e.g. happy, sad, fear)")
	return cmd
}

// runChat drives one session from line-oriented input until /quit, EOF or
// ctx is done.
func runChat(ctx context.Context, engine *conversation.Engine, initial *lexicon.Emotion, in io.Reader, out io.Writer) error {
	term := &terminal{out: out}
	session := engine.NewSession(term)
	defer session.Abandon()
	session.Start(ctx, initial)

	scanner := bufio.NewScanner(in)
	for {
		term.prompt()
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			if err := session.Submit(ctx, line); err != nil && !errors.Is(err, conversation.ErrSuperseded) {
				term.printf("! %v\n", err)
			}
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		switch cmd {
		case "/quit", "/exit":
			return nil
		case "/next":
			if _, ok := session.Next(); !ok {
				term.printf("! nothing queued\n")
			}
		case "/prev":
			if _, ok := session.Previous(); !ok {
				term.printf("! nothing queued\n")
			}
		case "/play":
			if _, ok := session.Select(arg); !ok {
				term.printf("! no queued track %q\n", arg)
			}
		case "/toggle":
			if session.Snapshot().Current == nil {
				term.printf("! nothing queued\n")
				continue
			}
			session.TogglePlay()
		case "/fail":
			session.ReportFailure("", playback.FailureMedia)
		case "/emotion":
			if arg == "" {
				term.printf("! usage: /emotion <label>\n")
				continue
			}
			session.SetExternalEmotion(ctx, arg)
		default:
			term.printf("%s\n", chatHelp)
		}
	}
}

// terminal renders session events as plain text.
type terminal struct {
	mu  sync.Mutex
	out io.Writer
}

var _ conversation.Emitter = (*terminal)(nil)

func (t *terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

func (t *terminal) prompt() {
	t.printf("you> ")
}

func (t *terminal) AppendMessage(m conversation.Message) {
	if m.Sender == conversation.SenderUser {
		return
	}
	t.printf("neura> %s\n", m.Text)
}

func (t *terminal) SetSearchResults(tracks []search.Track) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, tr := range tracks {
		fmt.Fprintf(t.out, "  %2d. %s - %s [%s]\n", i+1, tr.Title, tr.Artist(), tr.ID)
	}
}

func (t *terminal) SetCurrentTrack(tr search.Track) {
	t.printf("  now playing: %s - %s\n", tr.Title, tr.Artist())
}

func (t *terminal) PlaybackStateChanged(playing bool) {
	if playing {
		t.printf("  (playing)\n")
	} else {
		t.printf("  (paused)\n")
	}
}
