package kurdforest_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Container setup and client helpers for the kurdforest end-to-end tests.
 */

const testImageName = "kurdforest-test:latest"

// TestMain builds the Docker image once before all tests and removes it
// afterwards.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building KurdForest Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up KurdForest Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/kurdforest/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

type service struct {
	baseURL   string
	container testcontainers.Container
}

// setupContainer starts kurdforest with SQLite, no SMTP relay and relaxed
// rate limits.
func setupContainer(t *testing.T) *service {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env: map[string]string{
			"ENV":        "test",
			"LOG_LEVEL":  "info",
			"LOG_FORMAT": "json",
			// Tests make many rapid requests which would otherwise hit the strict limits
			"RATELIMIT_STRICT_REQUESTS":   "1000",
			"RATELIMIT_STRICT_WINDOW_SEC": "60",
			"RATELIMIT_STRICT_BURST":      "1000",
			"RATELIMIT_MODERATE_REQUESTS": "1000",
			"RATELIMIT_MODERATE_BURST":    "1000",
		},
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	return &service{
		baseURL:   fmt.Sprintf("http://%s:%s", host, mappedPort.Port()),
		container: container,
	}
}

// newClient returns a client with its own cookie jar that does not follow
// redirects.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar:     jar,
		Timeout: 10 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (s *service) postForm(t *testing.T, c *http.Client, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := c.PostForm(s.baseURL+path, form)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *service) get(t *testing.T, c *http.Client, path string) *http.Response {
	t.Helper()
	resp, err := c.Get(s.baseURL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *service) postJSON(t *testing.T, c *http.Client, path, body string) *http.Response {
	t.Helper()
	resp, err := c.Post(s.baseURL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// register submits the form and returns the pending token from the redirect.
func (s *service) register(t *testing.T, c *http.Client, username, email, password string) string {
	t.Helper()
	resp := s.postForm(t, c, "/register", url.Values{
		"username": {username},
		"email":    {email},
		"password": {password},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/verify", loc.Path)
	return loc.Query().Get("token")
}

var codePattern = regexp.MustCompile(`#28a745;">([0-9A-F]{6})</p>`)

// verificationCode scrapes the most recent code sent to email from the
// container log, since without a relay the mailer only logs.
func (s *service) verificationCode(t *testing.T, email string) string {
	t.Helper()
	ctx := context.Background()

	var code string
	require.Eventually(t, func() bool {
		logs, err := s.container.Logs(ctx)
		if err != nil {
			return false
		}
		defer logs.Close()

		scanner := bufio.NewScanner(logs)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if i := strings.IndexByte(string(line), '{'); i > 0 {
				line = line[i:]
			}
			var entry struct {
				To   string `json:"to"`
				Body string `json:"body"`
			}
			if json.Unmarshal(line, &entry) != nil || entry.To != email {
				continue
			}
			if m := codePattern.FindStringSubmatch(entry.Body); m != nil {
				code = m[1]
			}
		}
		return code != ""
	}, 10*time.Second, 200*time.Millisecond)
	return code
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}
