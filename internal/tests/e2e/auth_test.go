//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/savoria-catering/apiserver/config"
	"github.com/savoria-catering/apiserver/internal/server"
)

const (
	serverPort = 18080
)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	root, err := repoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate repo root: %v\n", err)
		os.Exit(1)
	}

	if err := dockerCompose(ctx, root, "up", "-d"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start docker compose: %v\n", err)
		os.Exit(1)
	}

	if err := waitForPostgres(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "postgres not ready: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	if err := runMigrations(root); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	srv, err := startServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	if err := waitForHealth(ctx, baseURL+"/healthz"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		_ = srv.Shutdown()
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	code := m.Run()

	_ = srv.Shutdown()
	_ = dockerCompose(context.Background(), root, "down")
	os.Exit(code)
}

func TestAuthLifecycle(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	email := fmt.Sprintf("client_%d@example.com", time.Now().UnixNano())
	password := "testpass123!"

	registered, err := registerUser(t, baseURL, email, password)
	if err != nil {
		t.Fatalf("register user: %v", err)
	}
	if registered.User.Role != "client" {
		t.Fatalf("expected client role, got %q", registered.User.Role)
	}

	me, err := getMe(t, baseURL, registered.Token)
	if err != nil {
		t.Fatalf("get me: %v", err)
	}
	if me.Email != email {
		t.Fatalf("unexpected principal email: %q", me.Email)
	}

	if err := logout(t, baseURL, registered.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := getMe(t, baseURL, registered.Token); err == nil {
		t.Fatalf("expected token to be rejected after logout")
	}

	loggedIn, err := loginUser(t, baseURL, email, password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := deactivateUser(email); err != nil {
		t.Fatalf("deactivate user: %v", err)
	}
	if _, err := getMe(t, baseURL, loggedIn.Token); err == nil {
		t.Fatalf("expected token to be rejected after deactivation")
	}
	if _, err := loginUser(t, baseURL, email, password); err == nil {
		t.Fatalf("expected login to fail for deactivated account")
	}
}

func TestOrderLifecycle(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	adminEmail := fmt.Sprintf("staff_%d@example.com", time.Now().UnixNano())
	clientEmail := fmt.Sprintf("diner_%d@example.com", time.Now().UnixNano())
	password := "testpass123!"

	admin, err := registerUser(t, baseURL, adminEmail, password)
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}
	if err := promoteUserToAdmin(adminEmail); err != nil {
		t.Fatalf("promote admin: %v", err)
	}
	// Re-login so the token claims carry the admin role.
	admin, err = loginUser(t, baseURL, adminEmail, password)
	if err != nil {
		t.Fatalf("login admin: %v", err)
	}

	client, err := registerUser(t, baseURL, clientEmail, password)
	if err != nil {
		t.Fatalf("register client: %v", err)
	}

	item, err := createMenuItem(t, baseURL, admin.Token)
	if err != nil {
		t.Fatalf("create menu item: %v", err)
	}

	order, err := placeOrder(t, baseURL, client.Token, item.ID)
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if order.Status != "pending" {
		t.Fatalf("expected pending order, got %q", order.Status)
	}
	if order.TotalCents != 2*item.PriceCents {
		t.Fatalf("order total %d, want %d", order.TotalCents, 2*item.PriceCents)
	}

	updated, err := updateOrderStatus(t, baseURL, admin.Token, order.ID, "confirmed")
	if err != nil {
		t.Fatalf("update order status: %v", err)
	}
	if updated.Status != "confirmed" {
		t.Fatalf("expected confirmed order, got %q", updated.Status)
	}

	// A client must not drive order status.
	if _, err := updateOrderStatus(t, baseURL, client.Token, order.ID, "delivered"); err == nil {
		t.Fatalf("expected status update to be forbidden for client")
	}
}

type userResponse struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type menuItemResponse struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

type orderResponse struct {
	ID         int    `json:"id"`
	Status     string `json:"status"`
	TotalCents int64  `json:"total_cents"`
}

type categoryResponse struct {
	ID int `json:"id"`
}

func registerUser(t *testing.T, baseURL, email, password string) (authResponse, error) {
	t.Helper()

	payload := map[string]string{
		"email":      email,
		"password":   password,
		"first_name": "Test",
		"last_name":  "User",
	}
	return postAuth(baseURL+"/auth/register", payload, http.StatusCreated)
}

func loginUser(t *testing.T, baseURL, email, password string) (authResponse, error) {
	t.Helper()

	payload := map[string]string{
		"email":    email,
		"password": password,
	}
	return postAuth(baseURL+"/auth/login", payload, http.StatusOK)
}

func postAuth(url string, payload map[string]string, wantStatus int) (authResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return authResponse{}, err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return authResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return authResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		msg, _ := io.ReadAll(resp.Body)
		return authResponse{}, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed authResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return authResponse{}, err
	}
	if parsed.Token == "" {
		return authResponse{}, fmt.Errorf("missing token in response")
	}
	return parsed, nil
}

func getMe(t *testing.T, baseURL, token string) (userResponse, error) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, baseURL+"/auth/me", nil)
	if err != nil {
		return userResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return userResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return userResponse{}, fmt.Errorf("me status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed userResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return userResponse{}, err
	}
	return parsed, nil
}

func logout(t *testing.T, baseURL, token string) error {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, baseURL+"/auth/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("logout status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func createMenuItem(t *testing.T, baseURL, token string) (menuItemResponse, error) {
	t.Helper()

	category, err := createCategory(t, baseURL, token)
	if err != nil {
		return menuItemResponse{}, err
	}

	payload := map[string]any{
		"category_id": category.ID,
		"name":        fmt.Sprintf("Tasting Platter %d", time.Now().UnixNano()),
		"description": "Seasonal selection",
		"price_cents": 4500,
		"available":   true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return menuItemResponse{}, err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/menu", bytes.NewReader(body))
	if err != nil {
		return menuItemResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return menuItemResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return menuItemResponse{}, fmt.Errorf("create item status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed menuItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return menuItemResponse{}, err
	}
	return parsed, nil
}

func createCategory(t *testing.T, baseURL, token string) (categoryResponse, error) {
	t.Helper()

	payload := map[string]any{
		"name":   fmt.Sprintf("Starters %d", time.Now().UnixNano()),
		"active": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return categoryResponse{}, err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/categories", bytes.NewReader(body))
	if err != nil {
		return categoryResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return categoryResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return categoryResponse{}, fmt.Errorf("create category status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed categoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return categoryResponse{}, err
	}
	return parsed, nil
}

func placeOrder(t *testing.T, baseURL, token string, menuItemID int) (orderResponse, error) {
	t.Helper()

	payload := map[string]any{
		"event_date": time.Now().Add(96 * time.Hour).Format(time.RFC3339),
		"address":    "12 Harbour St",
		"headcount":  25,
		"items": []map[string]any{
			{"menu_item_id": menuItemID, "quantity": 2},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return orderResponse{}, err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return orderResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return orderResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return orderResponse{}, fmt.Errorf("place order status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return orderResponse{}, err
	}
	return parsed, nil
}

func updateOrderStatus(t *testing.T, baseURL, token string, orderID int, status string) (orderResponse, error) {
	t.Helper()

	body, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return orderResponse{}, err
	}

	req, err := http.NewRequest(http.MethodPut, fmt.Sprintf("%s/orders/%d/status", baseURL, orderID), bytes.NewReader(body))
	if err != nil {
		return orderResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return orderResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return orderResponse{}, fmt.Errorf("update status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return orderResponse{}, err
	}
	return parsed, nil
}

func promoteUserToAdmin(email string) error {
	return execSQL("UPDATE users SET role = 'admin', updated_at = NOW() WHERE email = $1", email)
}

func deactivateUser(email string) error {
	return execSQL("UPDATE users SET active = FALSE, updated_at = NOW() WHERE email = $1", email)
}

func execSQL(query string, args ...any) error {
	cfg := config.LoadConfig()
	dsn := buildPostgresURL(cfg)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = db.ExecContext(ctx, query, args...)
	return err
}

func waitForPostgres(ctx context.Context) error {
	cfg := config.LoadConfig()
	dsn := buildPostgresURL(cfg)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres ping timeout: %w", err)
		case <-ticker.C:
		}
	}
}

func waitForHealth(ctx context.Context, url string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			return fmt.Errorf("health check failed with status")
		case <-ticker.C:
		}
	}
}

func runMigrations(root string) error {
	cfg := config.LoadConfig()
	dsn := buildPostgresURL(cfg)
	migrationsPath := filepath.Join(root, "internal", "db", "migrations")
	migrationsURL := "file://" + migrationsPath

	migrator, err := migrate.New(migrationsURL, dsn)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func buildPostgresURL(cfg config.Config) string {
	sslmode := "disable"
	if cfg.Database.UseSSL {
		sslmode = "require"
	}
	host := fmt.Sprintf("%s:%d", cfg.Database.Host, cfg.Database.Port)
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		host,
		cfg.Database.DBName,
		sslmode,
	)
}

func startServer() (*server.Server, error) {
	_ = os.Setenv("JWT_SECRET", "test-secret")
	_ = os.Setenv("SERVER_PORT", fmt.Sprintf("%d", serverPort))
	_ = os.Setenv("DB_HOST", "localhost")
	_ = os.Setenv("DB_PORT", "5432")
	_ = os.Setenv("DB_USER", "savoria")
	_ = os.Setenv("DB_PASSWORD", "savoria")
	_ = os.Setenv("DB_NAME", "savoria")
	_ = os.Setenv("DB_USE_SSL", "false")

	cfg := config.LoadConfig()
	srv, err := server.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	go func() {
		_ = srv.Start()
	}()

	return srv, nil
}

func dockerCompose(ctx context.Context, root string, args ...string) error {
	composeFile := filepath.Join(root, "development", "docker-compose.yml")
	baseArgs := append([]string{"compose", "-f", composeFile}, args...)
	cmd := exec.CommandContext(ctx, "docker", baseArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
