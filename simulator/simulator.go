package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

type SimConfig struct {
	NumUsers         int
	NumPosts         int
	SimulationTime   time.Duration
	MessageFrequency float64
	LikeFrequency    float64
	CommentFrequency float64
	ReadRate         float64
	EngineURL        string
}

type SimulationStats struct {
	mu               sync.RWMutex
	StartTime        time.Time
	TotalRequests    int64
	SuccessRequests  int64
	FailedRequests   int64
	AverageLatency   time.Duration
	TotalMessages    int
	TotalPosts       int
	TotalLikes       int
	TotalComments    int
	TotalReads       int
	RequestLatencies []time.Duration
}

// Track simulated members and what they have touched so far
type SimulatedUser struct {
	Email      string
	Name       string
	Token      string
	LikedPosts map[int64]bool
}

type Simulator struct {
	config SimConfig
	stats  *SimulationStats
	users  []*SimulatedUser
	posts  []int64
	client *http.Client
	mu     sync.RWMutex
}

func NewSimulator(config SimConfig) *Simulator {
	return &Simulator{
		config: config,
		stats: &SimulationStats{
			StartTime:        time.Now(),
			RequestLatencies: make([]time.Duration, 0),
		},
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *Simulator) Run(ctx context.Context) error {
	log.Printf("Starting simulation...")

	if err := s.initialize(ctx); err != nil {
		return fmt.Errorf("initialization failed: %v", err)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.SimulateActivities(ctx); err != nil {
			log.Printf("Activities simulation error: %v", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.collectMetrics(ctx)
	}()

	wg.Wait()
	return nil
}

func (s *Simulator) initialize(ctx context.Context) error {
	log.Printf("Starting initialization...")

	log.Printf("Phase 1: Registering %d members...", s.config.NumUsers)
	if err := s.createInitialUsers(ctx); err != nil {
		return fmt.Errorf("failed to register members: %v", err)
	}

	log.Printf("Phase 2: Creating %d seed posts...", s.config.NumPosts)
	if err := s.createSeedPosts(ctx); err != nil {
		return fmt.Errorf("failed to create seed posts: %v", err)
	}

	log.Printf("Initialization completed successfully")
	return nil
}

func (s *Simulator) createInitialUsers(ctx context.Context) error {
	s.users = make([]*SimulatedUser, 0, s.config.NumUsers)
	s.mu.Lock()
	defer s.mu.Unlock()

	// Limited number of workers to not overwhelm the engine
	numWorkers := 5
	userJobs := make(chan int, numWorkers)
	results := make(chan *SimulatedUser, numWorkers)

	var wg sync.WaitGroup

	// Shared rate limiter across all workers
	rateLimiter := time.NewTicker(200 * time.Millisecond)
	defer rateLimiter.Stop()

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			client := &http.Client{
				Timeout: 5 * time.Second,
			}

			for userNum := range userJobs {
				<-rateLimiter.C

				user := &SimulatedUser{
					Email:      fmt.Sprintf("member_%d@campus.test", userNum),
					Name:       fmt.Sprintf("Member %d", userNum),
					LikedPosts: make(map[int64]bool),
				}

				// Exponential backoff for retries
				var err error
				for retries := 0; retries < 3; retries++ {
					if err = s.registerAndLogin(ctx, user, client); err == nil {
						results <- user
						break
					}
					backoffDuration := time.Duration(math.Pow(2, float64(retries))) * time.Second
					log.Printf("Worker %d: Retry %d for member %s after %v delay",
						workerID, retries+1, user.Email, backoffDuration)
					time.Sleep(backoffDuration)
				}

				if err != nil {
					log.Printf("Worker %d: Failed to register member %s after retries: %v",
						workerID, user.Email, err)
				}
			}
		}(i)
	}

	go func() {
		for i := 0; i < s.config.NumUsers; i++ {
			userJobs <- i
		}
		close(userJobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	successCount := 0
	progressTicker := time.NewTicker(2 * time.Second)
	defer progressTicker.Stop()

	for user := range results {
		s.users = append(s.users, user)
		successCount++

		select {
		case <-progressTicker.C:
			log.Printf("Progress: %d/%d members registered (%.2f%%)",
				successCount, s.config.NumUsers,
				float64(successCount)/float64(s.config.NumUsers)*100)
		default:
		}
	}

	log.Printf("Successfully registered %d members", len(s.users))
	return nil
}

func (s *Simulator) registerAndLogin(ctx context.Context, user *SimulatedUser, client *http.Client) error {
	registerData := map[string]interface{}{
		"email":    user.Email,
		"name":     user.Name,
		"password": "testpass123",
	}

	// Registration fails with 409 if the member survived a previous run;
	// login below recovers either way.
	if _, err := s.makeRequestWithClient(client, "POST", "/member/register", registerData, ""); err != nil {
		log.Printf("Note: registration for %s returned: %v", user.Email, err)
	}

	loginData := map[string]interface{}{
		"email":    user.Email,
		"password": "testpass123",
	}

	resp, err := s.makeRequestWithClient(client, "POST", "/member/login", loginData, "")
	if err != nil {
		return fmt.Errorf("failed to login member: %v", err)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return fmt.Errorf("failed to parse login response: %v", err)
	}
	if result.Token == "" {
		return fmt.Errorf("empty token returned for %s", user.Email)
	}

	user.Token = result.Token
	return nil
}

func (s *Simulator) createSeedPosts(ctx context.Context) error {
	s.posts = make([]int64, 0, s.config.NumPosts)

	for i := 0; i < s.config.NumPosts; i++ {
		author := s.users[i%len(s.users)]

		data := map[string]interface{}{
			"authorEmail": author.Email,
			"content": fmt.Sprintf("Seed post %d by %s: %s", i, author.Name,
				time.Now().Format(time.RFC3339)),
		}

		resp, err := s.makeRequest("POST", "/posts", data, author.Token)
		if err != nil {
			log.Printf("Failed to create seed post %d: %v", i, err)
			continue
		}

		var result struct {
			ID int64 `json:"id"`
		}
		if err := json.Unmarshal(resp, &result); err != nil {
			log.Printf("Failed to parse post response: %v", err)
			continue
		}

		s.posts = append(s.posts, result.ID)
		s.stats.mu.Lock()
		s.stats.TotalPosts++
		s.stats.mu.Unlock()

		time.Sleep(100 * time.Millisecond)
	}

	log.Printf("Created %d seed posts", len(s.posts))
	return nil
}

// Helper method to make HTTP requests
func (s *Simulator) makeRequest(method, endpoint string, data interface{}, token string) ([]byte, error) {
	return s.makeRequestWithClient(s.client, method, endpoint, data, token)
}

func (s *Simulator) makeRequestWithClient(client *http.Client, method, endpoint string, data interface{}, token string) ([]byte, error) {
	var body []byte
	var err error

	if data != nil {
		body, err = json.Marshal(data)
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequest(method, s.config.EngineURL+endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	s.recordRequestMetrics(start, err)

	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("request failed with status: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (s *Simulator) recordRequestMetrics(start time.Time, err error) {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()

	latency := time.Since(start)
	s.stats.TotalRequests++
	s.stats.RequestLatencies = append(s.stats.RequestLatencies, latency)

	if err != nil {
		s.stats.FailedRequests++
	} else {
		s.stats.SuccessRequests++
	}

	totalLatency := s.stats.AverageLatency * time.Duration(s.stats.TotalRequests-1)
	s.stats.AverageLatency = (totalLatency + latency) / time.Duration(s.stats.TotalRequests)
}

func (s *Simulator) randomUser() *SimulatedUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.users) == 0 {
		return nil
	}
	return s.users[rand.Intn(len(s.users))]
}

func (s *Simulator) randomPost() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.posts) == 0 {
		return 0, false
	}
	return s.posts[rand.Intn(len(s.posts))], true
}

func (s *Simulator) collectMetrics(ctx context.Context) {
	log.Printf("Starting metrics collection...")
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.stats.mu.RLock()
			elapsed := time.Since(s.stats.StartTime)
			requestRate := float64(s.stats.TotalRequests) / elapsed.Seconds()
			successRate := 0.0
			if s.stats.TotalRequests > 0 {
				successRate = float64(s.stats.SuccessRequests) / float64(s.stats.TotalRequests) * 100
			}

			log.Printf("\nSimulation Metrics (%.1f seconds elapsed):", elapsed.Seconds())
			log.Printf("- Request Rate: %.2f req/sec", requestRate)
			log.Printf("- Success Rate: %.1f%%", successRate)
			log.Printf("- Average Latency: %v", s.stats.AverageLatency)
			log.Printf("- Total Messages: %d", s.stats.TotalMessages)
			log.Printf("- Total Posts: %d", s.stats.TotalPosts)
			log.Printf("- Total Likes: %d", s.stats.TotalLikes)
			log.Printf("- Total Comments: %d", s.stats.TotalComments)
			log.Printf("- Notifications Read: %d", s.stats.TotalReads)
			log.Printf("- Failed Requests: %d", s.stats.FailedRequests)

			s.stats.mu.RUnlock()
		}
	}
}

// SimulationMetrics holds the final metrics of a run
type SimulationMetrics struct {
	TotalUsers        int
	TotalMessages     int
	TotalPosts        int
	TotalLikes        int
	TotalComments     int
	NotificationsRead int
	AverageLatency    time.Duration
	ErrorCount        int
	RequestsPerSecond float64
}

// GetMetrics returns the current simulation metrics
func (s *Simulator) GetMetrics() SimulationMetrics {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()

	elapsed := time.Since(s.stats.StartTime)
	requestRate := float64(s.stats.TotalRequests) / elapsed.Seconds()

	return SimulationMetrics{
		TotalUsers:        len(s.users),
		TotalMessages:     s.stats.TotalMessages,
		TotalPosts:        s.stats.TotalPosts,
		TotalLikes:        s.stats.TotalLikes,
		TotalComments:     s.stats.TotalComments,
		NotificationsRead: s.stats.TotalReads,
		AverageLatency:    s.stats.AverageLatency,
		ErrorCount:        int(s.stats.FailedRequests),
		RequestsPerSecond: requestRate,
	}
}
