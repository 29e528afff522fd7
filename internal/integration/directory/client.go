package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// ErrDirectoryUnavailable возвращается при сбое справочника сотрудников
var ErrDirectoryUnavailable = errors.New("employee directory unavailable")

const companyEmployeesPath = "/api/v1/users/employees/company/me"

// Client получает список сотрудников компании из сервиса пользователей.
// Ответ кешируется по компании на cacheTTL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cacheRepo  repository.CacheRepository
	cacheTTL   time.Duration
}

// NewClient создает клиента справочника. cacheRepo может быть nil, cacheTTL == 0 отключает кеш.
func NewClient(baseURL string, timeout time.Duration, cacheRepo repository.CacheRepository, cacheTTL time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cacheRepo:  cacheRepo,
		cacheTTL:   cacheTTL,
	}
}

func employeesCacheKey(companyID uint) string {
	return fmt.Sprintf("directory:company:%d:employees", companyID)
}

// ListCompanyEmployees возвращает сотрудников компании вызывающего, используя его токен
func (c *Client) ListCompanyEmployees(ctx context.Context, identity entity.Identity) ([]entity.Employee, error) {
	key := employeesCacheKey(identity.CompanyID)
	if c.cacheEnabled() {
		var cached []entity.Employee
		err := c.cacheRepo.GetJSON(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[Directory] Ошибка чтения кеша %s: %v", key, err)
		}
	}

	employees, err := c.fetch(ctx, identity.Token)
	if err != nil {
		log.Printf("[Directory] Не удалось получить сотрудников компании #%d: %v", identity.CompanyID, err)
		return nil, err
	}

	if c.cacheEnabled() {
		if err := c.cacheRepo.SetJSON(ctx, key, employees, c.cacheTTL); err != nil {
			log.Printf("[Directory] Ошибка записи кеша %s: %v", key, err)
		}
	}
	return employees, nil
}

func (c *Client) fetch(ctx context.Context, token string) ([]entity.Employee, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+companyEmployeesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: status=%d body=%s", ErrDirectoryUnavailable, resp.StatusCode, string(body))
	}

	var employees []entity.Employee
	if err := json.NewDecoder(resp.Body).Decode(&employees); err != nil {
		return nil, fmt.Errorf("failed to decode directory response: %w", err)
	}
	return employees, nil
}

func (c *Client) cacheEnabled() bool {
	return c.cacheRepo != nil && c.cacheTTL > 0
}
