package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

const (
	VALKEY_PROCESSED_UPDATES_KEY = "mindmate:processed_updates"
	valkeyRetries                = 3
)

type ValkeyOptions struct {
	Address  string
	Password string
	UseTLS   bool
}

type ValkeyClient struct {
	client valkey.Client
	opts   ValkeyOptions
	mu     sync.RWMutex
}

func connectValkey(o ValkeyOptions) (valkey.Client, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{
			o.Address,
		},
		Password:         o.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if o.UseTLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}

	return client, nil
}

func NewValkeyClient(o ValkeyOptions) (*ValkeyClient, error) {
	client, err := connectValkey(o)
	if err != nil {
		return nil, err
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey",
		slog.String("address", o.Address))
	return &ValkeyClient{client: client, opts: o}, nil
}

func (vc *ValkeyClient) current() valkey.Client {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.client
}

func (vc *ValkeyClient) recreateClient() {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := connectValkey(vc.opts)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed",
			slog.String("error", err.Error()))
		return
	}

	vc.client.Close()
	vc.client = client
	slog.Info("[ValkeyClient] Successfully reconnected to valkey")
}

func (vc *ValkeyClient) Close() {
	vc.current().Close()
}

// Set stores value under key with a TTL.
func (vc *ValkeyClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c := vc.current()
	res := vc.DoWithRetry(ctx, c.B().Set().Key(key).Value(value).ExSeconds(int64(ttl.Seconds())).Build(), valkeyRetries)
	return res.Error()
}

// Get returns the value under key; found is false when the key does not exist.
func (vc *ValkeyClient) Get(ctx context.Context, key string) (value string, found bool, err error) {
	c := vc.current()
	res := vc.DoWithRetry(ctx, c.B().Get().Key(key).Build(), valkeyRetries)
	value, err = res.ToString()
	if valkey.IsValkeyNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (vc *ValkeyClient) Delete(ctx context.Context, key string) error {
	c := vc.current()
	return vc.DoWithRetry(ctx, c.B().Del().Key(key).Build(), valkeyRetries).Error()
}

// Incr increments a counter and starts its expiry on first use.
func (vc *ValkeyClient) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	c := vc.current()
	count, err := vc.DoWithRetry(ctx, c.B().Incr().Key(key).Build(), valkeyRetries).AsInt64()
	if err != nil {
		return 0, err
	}

	if count == 1 {
		seconds := int64(window.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		if err := vc.DoWithRetry(ctx, c.B().Expire().Key(key).Seconds(seconds).Build(), valkeyRetries).Error(); err != nil {
			return count, err
		}
	}
	return count, nil
}

func (vc *ValkeyClient) MarkProcessed(ctx context.Context, key string) error {
	c := vc.current()
	completed := []valkey.Completed{
		c.B().Sadd().Key(VALKEY_PROCESSED_UPDATES_KEY).Member(key).Build(),
		c.B().Expire().Key(VALKEY_PROCESSED_UPDATES_KEY).Seconds(86400).Build(),
	}

	responses := vc.DoMultiWithRetry(ctx, completed, valkeyRetries)
	for _, res := range responses {
		if err := res.Error(); err != nil {
			return err
		}
	}

	slog.Debug("[ValkeyClient] Marked update as processed",
		slog.String("key", key))
	return nil
}

func (vc *ValkeyClient) IsProcessed(ctx context.Context, key string) bool {
	c := vc.current()
	res := vc.DoWithRetry(ctx, c.B().Sismember().Key(VALKEY_PROCESSED_UPDATES_KEY).Member(key).Build(), valkeyRetries)

	ok, err := res.AsBool()
	if err != nil {
		return false
	}

	return ok
}

func (vc *ValkeyClient) DoMultiWithRetry(ctx context.Context, completed []valkey.Completed, retries int) []valkey.ValkeyResult {
	var results []valkey.ValkeyResult

	for i := 0; i < retries; i++ {
		results = vc.current().DoMulti(ctx, completed...)
		hasErr := false
		for _, r := range results {
			if r.Error() != nil {
				hasErr = true
				slog.Warn("[ValkeyClient] Do Multi failed",
					slog.Int("attempt", i+1),
					slog.String("error", r.Error().Error()))
				if isConnectionError(r.Error()) {
					vc.recreateClient()
				}
				break
			}
		}
		if !hasErr {
			break
		}
		time.Sleep(time.Millisecond * 250)
	}

	return results
}

func (vc *ValkeyClient) DoWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		result = vc.current().Do(ctx, completed)
		err := result.Error()
		if err == nil || valkey.IsValkeyNil(err) {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
		if isConnectionError(err) {
			vc.recreateClient()
		}

		time.Sleep(250 * time.Millisecond)
	}

	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
