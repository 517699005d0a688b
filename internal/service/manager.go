package service

import (
	"context"
	"sync"
	"tryon/internal/dto"
	"tryon/internal/logger"
	"tryon/internal/service/ai"
	"tryon/internal/service/stream"
	"tryon/internal/service/tryon"
)

// Broadcaster pushes realtime events to open pages.
type Broadcaster interface {
	Broadcast(event dto.Event) error
}

// Manager connects the stream monitor, the face detector, the realtime hub and
// the session store. Sampled frames are queued for a single detection worker.
type Manager struct {
	monitor  *stream.Monitor
	detector ai.FaceDetector
	hub      Broadcaster
	sessions *tryon.SessionStore
	logger   *logger.Logger

	processingQueue chan []byte
	wg              sync.WaitGroup

	mu           sync.Mutex
	streamStatus *stream.Status
	detected     *bool
}

func NewManager(monitor *stream.Monitor, detector ai.FaceDetector, hub Broadcaster, sessions *tryon.SessionStore, logger *logger.Logger) *Manager {
	manager := &Manager{
		monitor:         monitor,
		detector:        detector,
		hub:             hub,
		sessions:        sessions,
		logger:          logger,
		processingQueue: make(chan []byte, 4),
	}

	monitor.OnChange(manager.HandleStreamStatus)
	monitor.OnFrame(manager.HandleFrame)
	return manager
}

// Run starts the detection worker and polls the stream until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	m.wg.Add(1)
	go m.processingWorker()

	m.logger.Info("Manager started (face detector available: %t)", m.detector.Available())
	m.monitor.Run(ctx)

	close(m.processingQueue)
	m.wg.Wait()
	m.logger.Info("Manager stopped")
}

// HandleStreamStatus applies a poll transition to every session and notifies viewers.
func (m *Manager) HandleStreamStatus(st stream.Status) {
	m.mu.Lock()
	m.streamStatus = &st
	m.mu.Unlock()

	m.sessions.Each(func(c *tryon.Controller) {
		c.SetStreamAvailable(st.Available, st.Reason)
	})

	available := st.Available
	if err := m.hub.Broadcast(dto.Event{
		Type:      dto.EventStreamStatus,
		Available: &available,
		Reason:    st.Reason,
		Timestamp: st.CheckedAt,
	}); err != nil {
		m.logger.Error("Failed to broadcast stream status: %v", err)
	}
}

// HandleFrame queues a sampled frame for detection, dropping it when the worker is busy.
func (m *Manager) HandleFrame(frame []byte) {
	if !m.detector.Available() {
		return
	}

	select {
	case m.processingQueue <- frame:
	default:
		m.logger.Warning("Detection queue full, skipping frame")
	}
}

// Sync copies the latest server-side observations into a freshly mounted controller.
func (m *Manager) Sync(c *tryon.Controller) {
	m.mu.Lock()
	st, detected := m.streamStatus, m.detected
	m.mu.Unlock()

	if st != nil && !st.Available {
		c.SetStreamAvailable(false, st.Reason)
	}
	if detected != nil {
		c.ReportDetection(*detected)
	}
}

func (m *Manager) processingWorker() {
	defer m.wg.Done()

	for frame := range m.processingQueue {
		m.detect(frame)
	}
}

func (m *Manager) detect(frame []byte) {
	detected, err := m.detector.DetectFace(frame)
	if err != nil {
		m.logger.Error("Face detection failed: %v", err)
		return
	}

	m.mu.Lock()
	changed := m.detected == nil || *m.detected != detected
	m.detected = &detected
	m.mu.Unlock()

	m.sessions.Each(func(c *tryon.Controller) {
		c.ReportDetection(detected)
	})

	if !changed {
		return
	}
	m.logger.Info("Face detected: %t", detected)
	if err := m.hub.Broadcast(dto.Event{Type: dto.EventDetection, Detected: &detected}); err != nil {
		m.logger.Error("Failed to broadcast detection: %v", err)
	}
}
