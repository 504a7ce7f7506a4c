package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// HTTPClient отправка чанков в API видео
type HTTPClient struct {
	baseUrl string
	token   string
	client  *http.Client
}

func NewHTTPClient(baseUrl, token string) *HTTPClient {
	return &HTTPClient{
		baseUrl: strings.TrimRight(baseUrl, "/"),
		token:   token,
		client:  &http.Client{},
	}
}

type apiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (c *HTTPClient) SendChunk(ctx context.Context, chunk Chunk) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fields := map[string]string{
		"session_id":   chunk.SessionID,
		"chunk_index":  strconv.Itoa(chunk.Index),
		"total_chunks": strconv.Itoa(chunk.Total),
	}
	if chunk.Meta != nil {
		fields["title"] = chunk.Meta.Title
		fields["description"] = chunk.Meta.Description
		fields["original_name"] = chunk.Meta.OriginalName
		fields["total_size"] = strconv.FormatInt(chunk.Meta.TotalSize, 10)
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return err
		}
	}
	part, err := writer.CreateFormFile("chunk", fmt.Sprintf("chunk_%06d", chunk.Index))
	if err != nil {
		return err
	}
	if _, err = part.Write(chunk.Data); err != nil {
		return err
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%v/api/v1/videos/upload-chunk", c.baseUrl), body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(req)
}

func (c *HTTPClient) ReportFailure(ctx context.Context, sessionID string, chunkIndex int, reason string) error {
	data, err := json.Marshal(map[string]interface{}{
		"chunk_index": chunkIndex,
		"reason":      reason,
	})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%v/api/v1/videos/upload-session/%v/fail", c.baseUrl, sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *HTTPClient) do(req *http.Request) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "ошибка выполнения запроса")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	statusErr := StatusError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiResp := apiResponse{}
	if json.Unmarshal(data, &apiResp) == nil && apiResp.Message != "" {
		statusErr.Message = apiResp.Message
	} else {
		statusErr.Message = string(data)
	}
	return statusErr
}
