package sandbox

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codepad/internal/models"
)

func newTestServer(t *testing.T, response string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(response))
	}))
}

func TestExecuteCompleted(t *testing.T) {
	server := newTestServer(t, `{"stdout":"hello\n","time":"0.012","status":{"id":3,"description":"Accepted"}}`)
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	result, err := client.Execute(context.Background(), `print("hello")`, "python", "")

	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, result.Status)
	assert.Equal(t, "hello\n", result.Stdout)
	assert.Equal(t, 12, result.ExecutionTimeMs)
}

func TestExecuteTimeLimit(t *testing.T) {
	server := newTestServer(t, `{"stdout":"","time":"2.000","status":{"id":5,"description":"Time Limit Exceeded"}}`)
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	result, err := client.Execute(context.Background(), "while True: pass", "python", "")

	require.NoError(t, err)
	assert.Equal(t, models.StatusTimeout, result.Status)
	assert.NotEmpty(t, result.Stdout)
}

func TestExecuteCompileError(t *testing.T) {
	server := newTestServer(t, `{"compile_output":"syntax error","status":{"id":6,"description":"Compilation Error"}}`)
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	result, err := client.Execute(context.Background(), "int main( {}", "c", "")

	require.NoError(t, err)
	assert.Equal(t, models.StatusError, result.Status)
	assert.Equal(t, "syntax error", result.Stdout)
}

func TestExecuteRuntimeError(t *testing.T) {
	server := newTestServer(t, `{"stderr":"panic: index out of range","status":{"id":11,"description":"Runtime Error (NZEC)"}}`)
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	result, err := client.Execute(context.Background(), "x", "go", "")

	require.NoError(t, err)
	assert.Equal(t, models.StatusRuntimeError, result.Status)
	assert.Equal(t, "panic: index out of range", result.Stdout)
}

// 不支援的語言以結果值回報，不是錯誤
func TestExecuteUnsupportedLanguage(t *testing.T) {
	client := NewClient("http://localhost:1", time.Second)
	result, err := client.Execute(context.Background(), "x", "brainfuck", "")

	require.NoError(t, err)
	assert.Equal(t, models.StatusError, result.Status)
	assert.Contains(t, result.Stdout, "不支援的語言")
}

func TestExecuteNon2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "queue full", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	_, err := client.Execute(context.Background(), "x", "python", "")
	assert.Error(t, err)
}

func TestSupportedLanguage(t *testing.T) {
	assert.True(t, SupportedLanguage("python"))
	assert.False(t, SupportedLanguage("cobol"))
}

func TestParseTimeMs(t *testing.T) {
	assert.Equal(t, 1500, parseTimeMs("1.5"))
	assert.Equal(t, 0, parseTimeMs(""))
	assert.Equal(t, 0, parseTimeMs("abc"))
}
