package client

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Aazukvid2000/Pyxolotl/internal/config"
)

// Cloudinary resource types. Archives travel as raw assets.
const (
	ResourceImage = "image"
	ResourceVideo = "video"
	ResourceRaw   = "raw"
)

type CloudinaryClient interface {
	Enabled() bool
	Upload(ctx context.Context, file io.Reader, folder, resourceType string) (string, error)
	Destroy(ctx context.Context, publicID, resourceType string) error
}

type cloudinaryClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	cloudName  string
	apiKey     string
	apiSecret  string
}

type cloudinaryUploadResult struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

func NewCloudinaryClient(cloudinaryCfg *config.Cloudinary) CloudinaryClient {
	return &cloudinaryClientImpl{
		httpClient: &http.Client{
			// large game archives can take a while
			Timeout: 10 * time.Minute,
		},
		baseApiURL: cloudinaryCfg.BaseApiURL,
		cloudName:  cloudinaryCfg.CloudName,
		apiKey:     cloudinaryCfg.APIKey,
		apiSecret:  cloudinaryCfg.APISecret,
	}
}

func (c *cloudinaryClientImpl) Enabled() bool {
	return c.cloudName != "" && c.apiKey != "" && c.apiSecret != ""
}

// sign builds the SHA-1 request signature over the sorted params plus the
// API secret, as the upload API requires.
func (c *cloudinaryClientImpl) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(params[k])
	}
	sb.WriteString(c.apiSecret)

	sum := sha1.Sum([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

func (c *cloudinaryClientImpl) Upload(ctx context.Context, file io.Reader, folder, resourceType string) (string, error) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	params := map[string]string{
		"timestamp": timestamp,
	}
	if folder != "" {
		params["folder"] = folder
	}
	signature := c.sign(params)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range params {
		if err := w.WriteField(k, v); err != nil {
			return "", fmt.Errorf("write form field: %w", err)
		}
	}
	if err := w.WriteField("api_key", c.apiKey); err != nil {
		return "", fmt.Errorf("write form field: %w", err)
	}
	if err := w.WriteField("signature", signature); err != nil {
		return "", fmt.Errorf("write form field: %w", err)
	}

	part, err := w.CreateFormFile("file", "file")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy file into form: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		fmt.Sprintf("%s/v1_1/%s/%s/upload", c.baseApiURL, c.cloudName, resourceType),
		&buf,
	)
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("cloudinary upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("cloudinary error %d: %s", resp.StatusCode, string(b))
	}

	var result cloudinaryUploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode cloudinary response: %w", err)
	}

	return result.SecureURL, nil
}

func (c *cloudinaryClientImpl) Destroy(ctx context.Context, publicID, resourceType string) error {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	params := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}
	signature := c.sign(params)

	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("timestamp", timestamp)
	form.Set("api_key", c.apiKey)
	form.Set("signature", signature)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		fmt.Sprintf("%s/v1_1/%s/%s/destroy", c.baseApiURL, c.cloudName, resourceType),
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cloudinary destroy request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("cloudinary error %d: %s", resp.StatusCode, string(b))
	}

	return nil
}

var cloudinaryPublicIDRe = regexp.MustCompile(`/upload/(?:v\d+/)?(.+?)(?:\.\w+)?$`)

// ExtractPublicID pulls the public id out of a Cloudinary delivery URL.
// Returns the empty string when the URL does not look like one.
func ExtractPublicID(assetURL string) string {
	match := cloudinaryPublicIDRe.FindStringSubmatch(assetURL)
	if match == nil {
		return ""
	}
	return match[1]
}
