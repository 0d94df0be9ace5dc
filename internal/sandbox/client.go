// Package sandbox 封裝對遠端程式碼執行沙箱（Judge0 相容 API）的呼叫
package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"codepad/internal/models"
)

// 沙箱 API 的語言代號
var languageIDs = map[string]int{
	"c":          50,
	"cpp":        54,
	"go":         60,
	"java":       62,
	"javascript": 63,
	"python":     71,
	"typescript": 74,
}

// 沙箱回傳的狀態代號
const (
	statusAccepted     = 3
	statusWrongAnswer  = 4
	statusTimeLimit    = 5
	statusCompileError = 6
)

// Client 是沙箱 API 的 HTTP 客戶端
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type submissionRequest struct {
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id"`
	Stdin      string `json:"stdin"`
}

type submissionResponse struct {
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compile_output"`
	Time          string `json:"time"` // 執行秒數，字串形式
	Status        struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
}

// SupportedLanguage 回報語言是否有對應的沙箱代號
func SupportedLanguage(language string) bool {
	_, ok := languageIDs[language]
	return ok
}

// Execute 同步送出一次執行並等待結果。
// 回傳錯誤只代表傳輸層面的失敗（連不上、逾時、非預期回應），
// 程式本身的編譯或執行錯誤會以結果值的形式回傳
func (c *Client) Execute(ctx context.Context, code, language, stdin string) (*models.ExecutionResult, error) {
	languageID, ok := languageIDs[language]
	if !ok {
		return &models.ExecutionResult{
			Stdout: fmt.Sprintf("不支援的語言: %s", language),
			Status: models.StatusError,
		}, nil
	}

	body, err := json.Marshal(submissionRequest{
		SourceCode: code,
		LanguageID: languageID,
		Stdin:      stdin,
	})
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/submissions?base64_encoded=false&wait=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("sandbox returned status %d: %s", resp.StatusCode, string(data))
	}

	var result submissionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return convertResponse(&result), nil
}

// convertResponse 把沙箱回應轉換成統一的執行結果
func convertResponse(resp *submissionResponse) *models.ExecutionResult {
	result := &models.ExecutionResult{
		Stdout:          resp.Stdout,
		ExecutionTimeMs: parseTimeMs(resp.Time),
	}

	switch {
	case resp.Status.ID == statusAccepted || resp.Status.ID == statusWrongAnswer:
		result.Status = models.StatusCompleted
	case resp.Status.ID == statusTimeLimit:
		result.Status = models.StatusTimeout
		if result.Stdout == "" {
			result.Stdout = "執行超時"
		}
	case resp.Status.ID == statusCompileError:
		result.Status = models.StatusError
		result.Stdout = resp.CompileOutput
	default:
		// 其餘狀態碼皆為執行期錯誤
		result.Status = models.StatusRuntimeError
		if resp.Stderr != "" {
			result.Stdout = resp.Stderr
		} else if result.Stdout == "" {
			result.Stdout = resp.Status.Description
		}
	}

	return result
}

// parseTimeMs 把沙箱回傳的秒數字串換算成毫秒
func parseTimeMs(t string) int {
	if t == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0
	}
	return int(seconds * 1000)
}
