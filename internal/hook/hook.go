package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/maxvaer/dirbust/internal/engine"
)

// DefaultTimeout bounds a single hook invocation.
const DefaultTimeout = 30 * time.Second

// payload is written to the command's stdin.
type payload struct {
	URL      string `json:"url"`
	Path     string `json:"path"`
	Status   int    `json:"status"`
	Size     int64  `json:"size"`
	Redirect string `json:"redirect,omitempty"`
	Line     int    `json:"line"`
}

// Runner executes a shell command for every found path. The placeholders
// {url}, {path}, {status} and {size} are expanded in the command line.
type Runner struct {
	command string
	timeout time.Duration
}

// NewRunner returns nil for an empty command; a nil Runner does nothing.
func NewRunner(command string) *Runner {
	if strings.TrimSpace(command) == "" {
		return nil
	}
	return &Runner{command: command, timeout: DefaultTimeout}
}

// Run invokes the command for res and waits for it. Failures are logged,
// never returned, so a broken hook cannot stop a scan.
func (r *Runner) Run(ctx context.Context, res *engine.Result) {
	if r == nil {
		return
	}
	data, err := json.Marshal(payload{
		URL:      res.URL,
		Path:     res.Path(),
		Status:   res.StatusCode,
		Size:     res.ContentLength,
		Redirect: res.RedirectURL,
		Line:     res.Candidate.Line,
	})
	if err != nil {
		log.WithError(err).Warn("hook: encoding result")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	shell, args := shellCommand()
	cmd := exec.CommandContext(ctx, shell, append(args, r.expand(res))...)
	cmd.Stdin = bytes.NewReader(data)

	out, err := cmd.CombinedOutput()
	fields := log.Fields{"url": res.URL, "command": r.command}
	if err != nil {
		log.WithFields(fields).WithError(err).Warn("hook failed")
		return
	}
	if s := strings.TrimSpace(string(out)); s != "" {
		log.WithFields(fields).Info(s)
	}
}

func (r *Runner) expand(res *engine.Result) string {
	return strings.NewReplacer(
		"{url}", res.URL,
		"{path}", res.Path(),
		"{status}", strconv.Itoa(res.StatusCode),
		"{size}", strconv.FormatInt(res.ContentLength, 10),
	).Replace(r.command)
}

func shellCommand() (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C"}
	}
	return "sh", []string{"-c"}
}
