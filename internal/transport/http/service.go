package httptransport

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"runtime"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"voicelab-server-go/internal/domain/auth"
	"voicelab-server-go/internal/domain/dialogue"
	"voicelab-server-go/internal/domain/preview"
	"voicelab-server-go/internal/domain/stt"
	"voicelab-server-go/internal/domain/task"
	"voicelab-server-go/internal/domain/tts"
	"voicelab-server-go/internal/domain/tts/usecase"
	"voicelab-server-go/internal/domain/wer"
	"voicelab-server-go/internal/platform/logging"
)

// Service carries the wired collaborators for every REST handler.
type Service struct {
	MultiRole    *usecase.MultiRole
	LongText     *usecase.LongText
	Providers    map[string]tts.Provider
	Transcribers map[string]stt.Transcriber
	Preview      *preview.Cache
	Tasks        *task.Manager
	Auth         *auth.Service
	Logger       *logging.Logger

	startedAt time.Time
}

// Register attaches every route to the router.
func (s *Service) Register(r *Router) {
	s.startedAt = time.Now()

	r.API.POST("/auth/login", s.handleLogin)
	r.API.GET("/capabilities", s.handleCapabilities)
	r.API.GET("/capabilities/:provider", s.handleCapability)
	r.API.GET("/system/status", s.handleSystemStatus)

	r.Secured.POST("/tts/multirole", s.handleMultiRole)
	r.Secured.POST("/tts/longtext", s.handleLongText)
	r.Secured.POST("/dialogue/parse", s.handleParseDialogue)
	r.Secured.GET("/voices/:provider", s.handleVoices)
	r.Secured.GET("/voices/:provider/preview", s.handleVoicePreview)
	r.Secured.POST("/accuracy/compare", s.handleAccuracyCompare)
	r.Secured.POST("/jobs", s.handleSubmitJob)
	r.Secured.GET("/jobs", s.handleListJobs)
	r.Secured.GET("/jobs/:id", s.handleJobStatus)
	r.Secured.DELETE("/jobs/:id", s.handleCancelJob)
}

type multiRoleBody struct {
	Provider         string                    `json:"provider" binding:"required"`
	Script           string                    `json:"script"`
	Turns            []dialogue.Turn           `json:"turns"`
	VoiceAssignments []usecase.VoiceAssignment `json:"voice_assignments"`
	Language         string                    `json:"language"`
	OutputFormat     string                    `json:"output_format"`
	GapMS            int                       `json:"gap_ms"`
	CrossfadeMS      int                       `json:"crossfade_ms"`
	StylePrompt      string                    `json:"style_prompt"`
	StyleMap         map[string]string         `json:"style_map"`
}

type audioResponse struct {
	AudioBase64 string      `json:"audio_base64"`
	Meta        interface{} `json:"meta"`
}

func (s *Service) handleMultiRole(c *gin.Context) {
	var body multiRoleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}

	turns := body.Turns
	if len(turns) == 0 && body.Script != "" {
		parsed, _, err := dialogue.Parse(body.Script)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		turns = parsed
	}

	if body.OutputFormat == "" {
		body.OutputFormat = "wav"
	}

	res, err := s.MultiRole.Execute(c.Request.Context(), usecase.MultiRoleRequest{
		Provider:         body.Provider,
		Turns:            turns,
		VoiceAssignments: body.VoiceAssignments,
		Language:         body.Language,
		OutputFormat:     body.OutputFormat,
		GapMS:            body.GapMS,
		CrossfadeMS:      body.CrossfadeMS,
		StylePrompt:      body.StylePrompt,
		StyleMap:         body.StyleMap,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	RespondSuccess(c, http.StatusOK, audioResponse{
		AudioBase64: base64.StdEncoding.EncodeToString(res.Audio),
		Meta:        res,
	}, "")
}

type longTextBody struct {
	Provider     string `json:"provider" binding:"required"`
	Text         string `json:"text" binding:"required"`
	Voice        string `json:"voice" binding:"required"`
	Language     string `json:"language"`
	OutputFormat string `json:"output_format"`
	GapMS        int    `json:"gap_ms"`
	CrossfadeMS  int    `json:"crossfade_ms"`
	StylePrompt  string `json:"style_prompt"`
	Save         bool   `json:"save"`
}

func (s *Service) handleLongText(c *gin.Context) {
	var body longTextBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	if body.OutputFormat == "" {
		body.OutputFormat = "wav"
	}

	res, err := s.LongText.Execute(c.Request.Context(), usecase.LongTextRequest{
		Provider:     body.Provider,
		Text:         body.Text,
		Voice:        body.Voice,
		Language:     body.Language,
		OutputFormat: body.OutputFormat,
		GapMS:        body.GapMS,
		CrossfadeMS:  body.CrossfadeMS,
		StylePrompt:  body.StylePrompt,
		Save:         body.Save,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	RespondSuccess(c, http.StatusOK, audioResponse{
		AudioBase64: base64.StdEncoding.EncodeToString(res.Audio),
		Meta:        res,
	}, "")
}

func (s *Service) handleParseDialogue(c *gin.Context) {
	var body struct {
		Script string `json:"script" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}

	turns, speakers, err := dialogue.Parse(body.Script)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondSuccess(c, http.StatusOK, gin.H{"turns": turns, "speakers": speakers}, "")
}

func (s *Service) handleCapabilities(c *gin.Context) {
	RespondSuccess(c, http.StatusOK, gin.H{
		"capabilities": tts.ListCapabilities(),
		"native":       tts.ListNativeProviders(),
		"segmented":    tts.ListSegmentedProviders(),
	}, "")
}

func (s *Service) handleCapability(c *gin.Context) {
	capability, err := tts.GetCapability(c.Param("provider"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondSuccess(c, http.StatusOK, capability, "")
}

func (s *Service) handleVoices(c *gin.Context) {
	provider, ok := s.Providers[c.Param("provider")]
	if !ok {
		RespondError(c, http.StatusNotFound, "provider not configured", nil)
		return
	}
	RespondSuccess(c, http.StatusOK, gin.H{"voices": provider.AvailableVoices()}, "")
}

func (s *Service) handleVoicePreview(c *gin.Context) {
	provider, ok := s.Providers[c.Param("provider")]
	if !ok {
		RespondError(c, http.StatusNotFound, "provider not configured", nil)
		return
	}

	wav, err := s.Preview.Get(c.Request.Context(), provider, c.Query("voice"), c.Query("text"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Data(http.StatusOK, "audio/wav", wav)
}

type accuracyBody struct {
	Reference   string `json:"reference" binding:"required"`
	Hypothesis  string `json:"hypothesis"`
	AudioBase64 string `json:"audio_base64"`
	Transcriber string `json:"transcriber"`
}

// handleAccuracyCompare scores a hypothesis transcript against a reference.
// The hypothesis comes either inline or from transcribing an uploaded clip.
func (s *Service) handleAccuracyCompare(c *gin.Context) {
	var body accuracyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}

	hypothesis := body.Hypothesis
	if hypothesis == "" && body.AudioBase64 != "" {
		name := body.Transcriber
		if name == "" {
			name = "mock"
		}
		transcriber, ok := s.Transcribers[name]
		if !ok {
			RespondError(c, http.StatusNotFound, "transcriber not configured", nil)
			return
		}

		audio, err := base64.StdEncoding.DecodeString(body.AudioBase64)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "audio_base64 is not valid base64", nil)
			return
		}
		hypothesis, err = transcriber.Transcribe(c.Request.Context(), audio, "audio.wav")
		if err != nil {
			RespondDomainError(c, err)
			return
		}
	}

	RespondSuccess(c, http.StatusOK, gin.H{
		"reference":  body.Reference,
		"hypothesis": hypothesis,
		"wer":        wer.WER(body.Reference, hypothesis),
		"cer":        wer.CER(body.Reference, hypothesis),
	}, "")
}

type submitJobBody struct {
	Type     string          `json:"type" binding:"required"`
	Params   json.RawMessage `json:"params"`
	Priority int             `json:"priority"`
}

func (s *Service) handleSubmitJob(c *gin.Context) {
	var body submitJobBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}

	rec, err := s.Tasks.Submit(body.Type, ClientID(c), body.Params, body.Priority)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondSuccess(c, http.StatusAccepted, rec, "job accepted")
}

func (s *Service) handleListJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	recs, err := s.Tasks.List(ClientID(c), limit)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondSuccess(c, http.StatusOK, gin.H{"jobs": recs}, "")
}

func (s *Service) handleJobStatus(c *gin.Context) {
	rec, err := s.Tasks.Status(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "job not found", nil)
		return
	}
	RespondSuccess(c, http.StatusOK, rec, "")
}

func (s *Service) handleCancelJob(c *gin.Context) {
	if err := s.Tasks.Cancel(c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondSuccess(c, http.StatusOK, nil, "cancel requested")
}

func (s *Service) handleLogin(c *gin.Context) {
	var body struct {
		ClientID string `json:"client_id"`
	}
	_ = c.ShouldBindJSON(&body)

	token, claims, err := s.Auth.IssueToken(body.ClientID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondSuccess(c, http.StatusOK, gin.H{
		"token":      token,
		"client_id":  claims.ClientID,
		"expires_at": claims.ExpiresAt.Time,
	}, "")
}

func (s *Service) handleSystemStatus(c *gin.Context) {
	status := gin.H{
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"goroutines":     runtime.NumGoroutine(),
		"pending_jobs":   s.Tasks.Pending(),
		"providers":      providerNames(s.Providers),
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		status["memory_used_percent"] = vm.UsedPercent
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		status["cpu_percent"] = percents[0]
	}

	RespondSuccess(c, http.StatusOK, status, "")
}

func providerNames(providers map[string]tts.Provider) []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
