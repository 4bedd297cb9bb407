package mediahost

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/frahmantamala/ad-management/internal/core/events"
)

// Job is one graphic to compress and host.
type Job struct {
	GraphicID int64
	FilePath  string
	FileType  string
}

type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {

			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing job", "worker_id", w.ID, "graphic_id", job.GraphicID)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

// UpdateFunc persists the hosted URL for a graphic after upload succeeds.
type UpdateFunc func(ctx context.Context, graphicID int64, fileURL string) error

type Config struct {
	APIURL         string
	APIKey         string
	UploadTimeout  time.Duration
	MaxWorkers     int
	JobQueueSize   int
	WorkerPoolSize int
}

// Client runs the async compress-and-host pipeline behind graphic uploads.
type Client struct {
	apiURL        string
	apiKey        string
	uploadTimeout time.Duration
	compressor    *Compressor
	update        UpdateFunc
	logger        *slog.Logger

	jobQueue   chan Job
	workerPool chan chan Job
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewClient(config Config, compressor *Compressor, update UpdateFunc, logger *slog.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}

	workerPoolSize := config.WorkerPoolSize
	if workerPoolSize <= 0 {
		workerPoolSize = maxWorkers
	}

	uploadTimeout := config.UploadTimeout
	if uploadTimeout <= 0 {
		uploadTimeout = 30 * time.Second
	}

	client := &Client{
		apiURL:        config.APIURL,
		apiKey:        config.APIKey,
		uploadTimeout: uploadTimeout,
		compressor:    compressor,
		update:        update,
		logger:        logger,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan Job, jobQueueSize),
		workerPool: make(chan chan Job, workerPoolSize),
		ctx:        ctx,
		cancel:     cancel,
	}

	client.startWorkerPool()

	return client
}

func (c *Client) startWorkerPool() {
	c.once.Do(func() {

		for i := 0; i < c.maxWorkers; i++ {
			worker := NewWorker(i, c.workerPool, c.logger)
			worker.Start(c.ctx, &c.wg, c.processJob)
		}

		go c.dispatch()

		c.logger.Info("media host worker pool started",
			"max_workers", c.maxWorkers,
			"queue_size", cap(c.jobQueue))
	})
}

func (c *Client) dispatch() {
	c.wg.Add(1)
	defer c.wg.Done()

	for {
		select {
		case job := <-c.jobQueue:

			select {
			case jobChannel := <-c.workerPool:

				select {
				case jobChannel <- job:

				case <-c.ctx.Done():
					c.logger.Info("dispatcher shutting down")
					return
				}
			case <-c.ctx.Done():
				c.logger.Info("dispatcher shutting down")
				return
			}
		case <-c.ctx.Done():
			c.logger.Info("dispatcher shutting down")
			return
		}
	}
}

func (c *Client) Shutdown() {
	c.logger.Info("shutting down media host client")
	c.cancel()
	c.wg.Wait()
	c.logger.Info("media host client shutdown complete")
}

// Enqueue queues a graphic for processing. A full queue is an error, the
// caller decides whether to surface or drop it.
func (c *Client) Enqueue(job Job) error {
	select {
	case c.jobQueue <- job:
		c.logger.Info("media job queued",
			"graphic_id", job.GraphicID,
			"file_path", job.FilePath,
			"queue_length", len(c.jobQueue))
		return nil
	default:
		c.logger.Warn("media job queue full",
			"graphic_id", job.GraphicID,
			"queue_capacity", cap(c.jobQueue))
		return fmt.Errorf("media job queue full")
	}
}

// HandleGraphicUploaded adapts the event bus to the job queue. Wire it with
// bus.Subscribe(events.TypeGraphicUploaded, client.HandleGraphicUploaded).
func (c *Client) HandleGraphicUploaded(ctx context.Context, event events.Event) error {
	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return fmt.Errorf("unexpected payload for %s event", event.EventType())
	}

	graphicID, ok := data["graphic_id"].(int64)
	if !ok {
		return fmt.Errorf("missing graphic_id in %s event", event.EventType())
	}
	filePath, _ := data["file_path"].(string)
	fileType, _ := data["file_type"].(string)

	return c.Enqueue(Job{
		GraphicID: graphicID,
		FilePath:  filePath,
		FileType:  fileType,
	})
}

func (c *Client) processJob(job Job) {
	c.logger.Info("processing media job", "graphic_id", job.GraphicID, "file_type", job.FileType)

	uploadPath := job.FilePath

	if IsVideo(job.FileType) && c.compressor != nil {
		compressed, err := c.compressor.Compress(c.ctx, job.FilePath)
		if err != nil {
			// host the original rather than dropping the upload
			c.logger.Error("video compression failed, hosting original",
				"graphic_id", job.GraphicID, "error", err)
		} else {
			uploadPath = compressed
			defer os.Remove(compressed)
		}
	}

	hostedURL, err := c.hostFile(uploadPath)
	if err != nil {
		c.logger.Error("media hosting failed",
			"graphic_id", job.GraphicID, "file_path", uploadPath, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, 10*time.Second)
	defer cancel()

	if err := c.update(ctx, job.GraphicID, hostedURL); err != nil {
		c.logger.Error("failed to persist hosted url",
			"graphic_id", job.GraphicID, "url", hostedURL, "error", err)
		return
	}

	c.logger.Info("media job complete", "graphic_id", job.GraphicID, "url", hostedURL)
}

// hostFile uploads the file to the hosting API and returns its public URL.
func (c *Client) hostFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	ctx, cancel := context.WithTimeout(c.ctx, c.uploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.apiURL, "/")+"/upload", pr)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpClient := &http.Client{Timeout: c.uploadTimeout}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("media host returned status %d", resp.StatusCode)
	}

	var apiResponse struct {
		URL  string `json:"url"`
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}

	if apiResponse.URL != "" {
		return apiResponse.URL, nil
	}
	if apiResponse.Data.URL != "" {
		return apiResponse.Data.URL, nil
	}
	return "", fmt.Errorf("media host response missing url")
}
