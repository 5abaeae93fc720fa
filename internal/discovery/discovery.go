// Package discovery finds running anty debug servers on this machine.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/normanking/anty/internal/debugserver"
)

// Instance is a discovered debug server.
type Instance struct {
	URL      string    `json:"url"`      // Base URL (e.g., http://127.0.0.1:7717)
	State    string    `json:"state"`    // Character state at the last probe
	Clients  int       `json:"clients"`  // Connected WebSocket clients
	Status   string    `json:"status"`   // "online" or "offline"
	Latency  int64     `json:"latency"`  // Response time in ms
	LastSeen time.Time `json:"lastSeen"` // Last successful contact
}

// Online reports whether the last scan reached the instance.
func (i *Instance) Online() bool { return i.Status == StatusOnline }

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Config holds discovery configuration
type Config struct {
	// Ports to scan on localhost
	Ports []int
	// Custom URLs to check (in addition to port scanning)
	CustomURLs []string
	// Scan timeout per endpoint
	Timeout time.Duration
	// How often Start refreshes
	RefreshInterval time.Duration
	// Probes in flight at once
	Concurrency int
}

// DefaultConfig scans the default debug port and the next few.
func DefaultConfig() *Config {
	return &Config{
		Ports:           []int{7717, 7718, 7719, 7720, 7721},
		CustomURLs:      []string{},
		Timeout:         time.Second,
		RefreshInterval: 10 * time.Second,
		Concurrency:     4,
	}
}

// Service discovers and tracks debug servers
type Service struct {
	cfg        *Config
	httpClient *http.Client
	log        zerolog.Logger

	mu        sync.RWMutex
	instances map[string]*Instance
	selected  string
	onUpdate  func([]*Instance) // Callback after every scan

	stopCh  chan struct{}
	running bool
}

// NewService creates a new discovery service
func NewService(cfg *Config, logger zerolog.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Service{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log:       logger,
		instances: make(map[string]*Instance),
		stopCh:    make(chan struct{}),
	}
}

// SetOnUpdate sets callback for when the instance list changes
func (s *Service) SetOnUpdate(fn func([]*Instance)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = fn
}

// Start scans now and then every RefreshInterval until Stop or ctx ends.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stop := s.stopCh
	s.mu.Unlock()

	go func() {
		s.Scan(ctx)
		ticker := time.NewTicker(s.cfg.RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Scan(ctx)
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops background discovery
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		close(s.stopCh)
		s.running = false
	}
}

func (s *Service) targets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	urls := make([]string, 0, len(s.cfg.Ports)+len(s.cfg.CustomURLs))
	for _, p := range s.cfg.Ports {
		urls = append(urls, fmt.Sprintf("http://127.0.0.1:%d", p))
	}
	for _, u := range s.cfg.CustomURLs {
		urls = append(urls, strings.TrimSuffix(u, "/"))
	}
	return urls
}

// Scan probes every target and returns all known instances, online ones
// first.
func (s *Service) Scan(ctx context.Context) []*Instance {
	targets := s.targets()
	found := make([]*Instance, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, url := range targets {
		i, url := i, url
		g.Go(func() error {
			inst, err := s.probe(gctx, url)
			if err != nil {
				s.log.Debug().Str("url", url).Err(err).Msg("probe failed")
				return nil
			}
			found[i] = inst
			return nil
		})
	}
	g.Wait()

	s.mu.Lock()
	for _, inst := range s.instances {
		inst.Status = StatusOffline
	}
	online := 0
	for _, inst := range found {
		if inst != nil {
			s.instances[inst.URL] = inst
			online++
		}
	}
	list := s.listLocked()
	callback := s.onUpdate
	s.mu.Unlock()

	s.log.Debug().Int("targets", len(targets)).Int("online", online).Msg("discovery scan complete")
	if callback != nil {
		callback(list)
	}
	return list
}

// probe checks one URL for a debug server.
func (s *Service) probe(ctx context.Context, baseURL string) (*Instance, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/v1/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health returned %d", resp.StatusCode)
	}

	var h debugserver.Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, fmt.Errorf("decode health: %w", err)
	}
	if h.App != debugserver.AppName {
		return nil, fmt.Errorf("not an anty server (app %q)", h.App)
	}

	return &Instance{
		URL:      baseURL,
		State:    h.State,
		Clients:  h.Clients,
		Status:   StatusOnline,
		Latency:  time.Since(start).Milliseconds(),
		LastSeen: time.Now(),
	}, nil
}

func (s *Service) listLocked() []*Instance {
	list := make([]*Instance, 0, len(s.instances))
	for _, inst := range s.instances {
		list = append(list, inst)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Online() != list[j].Online() {
			return list[i].Online()
		}
		return list[i].URL < list[j].URL
	})
	return list
}

// Instances returns all discovered instances, online ones first.
func (s *Service) Instances() []*Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked()
}

// Get returns the instance at url, or nil.
func (s *Service) Get(url string) *Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.instances[url]
}

// Selected returns the selected instance, or the first online one.
func (s *Service) Selected() *Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if inst, ok := s.instances[s.selected]; ok {
		return inst
	}
	for _, inst := range s.listLocked() {
		if inst.Online() {
			return inst
		}
	}
	return nil
}

// Select makes url the selected instance.
func (s *Service) Select(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[url]; !ok {
		return fmt.Errorf("instance not found: %s", url)
	}
	s.selected = url
	return nil
}

// AddCustomURL adds a custom URL to scan
func (s *Service) AddCustomURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.cfg.CustomURLs {
		if u == url {
			return
		}
	}
	s.cfg.CustomURLs = append(s.cfg.CustomURLs, url)
}

// RemoveCustomURL removes a custom URL
func (s *Service) RemoveCustomURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.cfg.CustomURLs {
		if u == url {
			s.cfg.CustomURLs = append(s.cfg.CustomURLs[:i], s.cfg.CustomURLs[i+1:]...)
			return
		}
	}
}
