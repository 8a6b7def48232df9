package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/SthembisoGit/Yo-Score-sub002/internal/config"
)

// maxOutputBytes caps the stdout kept from one execution. Output beyond the
// cap is dropped and the result is marked truncated, which fails the test.
const maxOutputBytes = 64 * 1024

// languageIDs maps our language slugs to Judge0 language ids.
var languageIDs = map[string]int{
	"c":          50,
	"cpp":        54,
	"java":       62,
	"javascript": 63,
	"python":     71,
	"go":         60,
}

// Judge0Client runs code through a Judge0 instance using the synchronous
// wait=true API.
type Judge0Client struct {
	cfg    config.Judge0Config
	client *http.Client
}

func NewJudge0Client(cfg config.Judge0Config) *Judge0Client {
	return &Judge0Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type judge0Request struct {
	SourceCode   string  `json:"source_code"`
	LanguageID   int     `json:"language_id"`
	Stdin        string  `json:"stdin"`
	CPUTimeLimit float64 `json:"cpu_time_limit"`
	MemoryLimit  int     `json:"memory_limit"`
}

type judge0Response struct {
	Stdout   *string `json:"stdout"`
	Stderr   *string `json:"stderr"`
	Time     *string `json:"time"`
	Memory   *int    `json:"memory"`
	ExitCode *int    `json:"exit_code"`
	Status   struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
}

func (j *Judge0Client) Execute(ctx context.Context, req ExecRequest) (*ExecResult, error) {
	langID, ok := languageIDs[req.Language]
	if !ok {
		return nil, fmt.Errorf("judge0: unsupported language %q", req.Language)
	}

	body, err := json.Marshal(judge0Request{
		SourceCode:   req.Code,
		LanguageID:   langID,
		Stdin:        req.Stdin,
		CPUTimeLimit: float64(req.TimeoutMs) / 1000.0,
		MemoryLimit:  req.MemoryMB * 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("judge0: marshal request: %w", err)
	}

	url := j.cfg.URL + "/submissions?base64_encoded=false&wait=true"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("judge0: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if j.cfg.APIKey != "" {
		httpReq.Header.Set("X-RapidAPI-Key", j.cfg.APIKey)
	}
	if j.cfg.Host != "" {
		httpReq.Header.Set("X-RapidAPI-Host", j.cfg.Host)
	}

	resp, err := j.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("judge0: execute: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("judge0: unexpected status %d", resp.StatusCode)
	}

	var out judge0Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("judge0: decode response: %w", err)
	}

	return j.toResult(&out)
}

func (j *Judge0Client) toResult(out *judge0Response) (*ExecResult, error) {
	res := &ExecResult{Provider: "judge0"}

	if out.Stdout != nil {
		res.Stdout = *out.Stdout
	}
	if out.Stderr != nil {
		res.Stderr = *out.Stderr
	}
	if out.ExitCode != nil {
		res.ExitCode = *out.ExitCode
	}
	if out.Memory != nil {
		res.MemoryKB = *out.Memory
	}
	if out.Time != nil {
		if sec, err := strconv.ParseFloat(*out.Time, 64); err == nil {
			res.RuntimeMs = int(sec * 1000)
		}
	}

	if len(res.Stdout) > maxOutputBytes {
		res.Stdout = res.Stdout[:maxOutputBytes]
		res.Truncated = true
	}

	// Judge0 status ids: 3 accepted, 5 time limit, 6 compile error,
	// 7..12 runtime errors, 13 internal error, 14 exec format error.
	switch {
	case out.Status.ID == 5:
		res.TimedOut = true
		res.ErrorClass = ErrorClassTimeout
		if res.ExitCode == 0 {
			res.ExitCode = -1
		}
	case out.Status.ID == 6:
		res.ErrorClass = ErrorClassCompile
		if res.ExitCode == 0 {
			res.ExitCode = 1
		}
	case out.Status.ID >= 7 && out.Status.ID <= 12:
		res.ErrorClass = ErrorClassRuntime
		if res.ExitCode == 0 {
			res.ExitCode = 1
		}
	case out.Status.ID >= 13:
		return nil, fmt.Errorf("judge0: provider failure: %s", out.Status.Description)
	}

	return res, nil
}
