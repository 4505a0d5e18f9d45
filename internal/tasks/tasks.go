package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"

	"coralbay/estate/internal/config"
	"coralbay/estate/internal/email"
	"coralbay/estate/internal/models"
	"coralbay/estate/internal/services"
	"coralbay/estate/internal/utils"
)

// TaskType defines the type of a background task.
const (
	TypePhotoProcess   = "photo:process"
	TypeDecisionNotify = "moderation:notify"
)

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr: rdb.Options().Addr,
	}
	return asynq.NewClient(clientOpt)
}

// PhotoTaskPayload carries a photo normalization request.
type PhotoTaskPayload struct {
	S3Key     string `json:"s3_key"`
	ListingID string `json:"listing_id"`
}

// NewPhotoProcessTask builds a photo:process task for the image worker queue.
func NewPhotoProcessTask(s3Key string, listingID utils.SixID) (*asynq.Task, error) {
	payload, err := json.Marshal(PhotoTaskPayload{S3Key: s3Key, ListingID: listingID.String()})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal photo task payload: %w", err)
	}
	return asynq.NewTask(TypePhotoProcess, payload, asynq.Queue("images")), nil
}

// DecisionNotifyPayload carries a moderation decision notification request.
type DecisionNotifyPayload struct {
	ListingID string `json:"listing_id"`
	Status    string `json:"status"`
	Manager   string `json:"manager"`
}

// NewDecisionNotifyTask builds a moderation:notify task for the bg worker.
func NewDecisionNotifyTask(listingID utils.SixID, status models.Status, managerName string) (*asynq.Task, error) {
	payload, err := json.Marshal(DecisionNotifyPayload{
		ListingID: listingID.String(),
		Status:    string(status),
		Manager:   managerName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal decision notify payload: %w", err)
	}
	return asynq.NewTask(TypeDecisionNotify, payload), nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg             *config.Config
	emailSender     email.Sender
	listingService  services.IListingService
	chatService     services.IChatService
	templateService services.INotificationTemplateService
	s3Client        *s3.Client
	taskClient      *asynq.Client
}

func NewTaskProcessor(
	cfg *config.Config,
	emailSender email.Sender,
	listingService services.IListingService,
	chatService services.IChatService,
	templateService services.INotificationTemplateService,
	s3Client *s3.Client,
	taskClient *asynq.Client,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:             cfg,
		emailSender:     emailSender,
		listingService:  listingService,
		chatService:     chatService,
		templateService: templateService,
		s3Client:        s3Client,
		taskClient:      taskClient,
	}
}

// SetupServer configures an Asynq server with handlers registered for the
// given worker modes and returns it together with its mux. The caller is
// responsible for running it.
func SetupServer(rdb *redis.Client, processor *TaskProcessor, isImageWorker bool, isBgWorker bool) (*asynq.Server, *asynq.ServeMux) {
	serverOpt := asynq.RedisClientOpt{
		Addr: rdb.Options().Addr,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
				"images":   5, // Separate queue for photo normalization
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()

	if isBgWorker {
		mux.HandleFunc(TypeDecisionNotify, processor.HandleDecisionNotifyTask)
		log.Println("Registered background task handlers.")
	}

	if isImageWorker {
		mux.HandleFunc(TypePhotoProcess, processor.HandlePhotoProcessTask)
		log.Println("Registered photo processing task handlers.")
	}

	return srv, mux
}

// --- Task Handlers ---

// HandleDecisionNotifyTask emails the back office about a moderation decision
// and posts a system message to the agent's chat thread.
func (p *TaskProcessor) HandleDecisionNotifyTask(ctx context.Context, t *asynq.Task) error {
	var payload DecisionNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal decision notify payload: %v: %w", err, asynq.SkipRetry)
	}

	listingID, err := utils.ParseSixID(payload.ListingID)
	if err != nil {
		log.Printf("Invalid ListingID in decision notify payload: %s", payload.ListingID)
		return fmt.Errorf("invalid listing ID in payload: %w", asynq.SkipRetry)
	}

	listing, err := p.listingService.FindListingByID(ctx, listingID)
	if err != nil {
		log.Printf("Error fetching listing %s for decision notification: %v", payload.ListingID, err)
		if strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("listing not found: %w", asynq.SkipRetry)
		}
		return err
	}

	templateID := "decision_" + payload.Status
	tmpl, err := p.templateService.GetTemplate(ctx, templateID, "en-US")
	if err != nil {
		log.Printf("Error getting notification template %s: %v", templateID, err)
		return fmt.Errorf("notification template not found: %w", asynq.SkipRetry)
	}

	subject, body := p.templateService.Render(tmpl, map[string]string{
		"title":      listing.Title,
		"listing_id": listing.ID.String(),
		"manager":    payload.Manager,
		"agent":      listing.AgentID,
	})

	to := p.cfg.ModerationNotifyEmail
	rawMessage := buildRawMessage(p.cfg.SmtpFromAddress, to, subject, body)

	if err := p.emailSender.Send(ctx, []string{to}, subject, rawMessage); err != nil {
		log.Printf("Decision notification email failed for listing %s: %v", payload.ListingID, err)
		return err
	}

	if _, err := p.chatService.PostSystemMessage(ctx, listing.AgentID, body); err != nil {
		log.Printf("Failed to post decision system message for listing %s: %v", payload.ListingID, err)
		return err
	}

	log.Printf("Decision notification processed: listing=%s status=%s", payload.ListingID, payload.Status)
	return nil
}

// buildRawMessage assembles a plain-text email with essential headers.
func buildRawMessage(from, to, subject, body string) []byte {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("To: %s\r\n", to))
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	sb.WriteString("\r\n")
	return []byte(sb.String())
}

// HandlePhotoProcessTask normalizes an uploaded photo and attaches it to its
// listing: download from S3, enforce size, resize to the max dimension,
// overwrite the object, then record the key on the listing.
func (p *TaskProcessor) HandlePhotoProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload PhotoTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal photo task payload: %v: %w", err, asynq.SkipRetry)
	}

	listingID, err := utils.ParseSixID(payload.ListingID)
	if err != nil {
		log.Printf("Invalid ListingID in photo task payload: %s", payload.ListingID)
		return fmt.Errorf("invalid listing ID in payload: %w", asynq.SkipRetry)
	}

	log.Printf("Processing photo task: S3Key=%s, ListingID=%s", payload.S3Key, payload.ListingID)

	getObjectOutput, err := p.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.cfg.AwsS3Bucket),
		Key:    aws.String(payload.S3Key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			log.Printf("S3 object %s not found, likely upload failed or key incorrect.", payload.S3Key)
			return fmt.Errorf("s3 object not found: %w", asynq.SkipRetry)
		}
		log.Printf("Error getting object %s from S3: %v", payload.S3Key, err)
		return fmt.Errorf("failed to download photo from S3: %w", err)
	}
	defer getObjectOutput.Body.Close()

	imgData, err := io.ReadAll(getObjectOutput.Body)
	if err != nil {
		log.Printf("Error reading photo object body for key %s: %v", payload.S3Key, err)
		return fmt.Errorf("failed to read photo data: %w", err)
	}

	// Check initial size before decoding (more efficient)
	maxSizeBytes := int64(p.cfg.ImageMaxSizeMB) * 1024 * 1024
	if int64(len(imgData)) > maxSizeBytes {
		log.Printf("Photo %s exceeds max size (%d > %d bytes). Skipping.", payload.S3Key, len(imgData), maxSizeBytes)
		return fmt.Errorf("photo exceeds max size: %w", asynq.SkipRetry)
	}

	img, format, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		log.Printf("Error decoding photo for key %s: %v", payload.S3Key, err)
		return fmt.Errorf("unsupported image format or corrupt photo: %w", asynq.SkipRetry)
	}
	log.Printf("Decoded photo %s, format: %s, size: %dx%d", payload.S3Key, format, img.Bounds().Dx(), img.Bounds().Dy())

	maxWidth := uint(p.cfg.ImageMaxDimension)
	maxHeight := uint(p.cfg.ImageMaxDimension)
	needsResize := uint(img.Bounds().Dx()) > maxWidth || uint(img.Bounds().Dy()) > maxHeight

	processedKey := payload.S3Key
	var processedData []byte
	contentType := aws.ToString(getObjectOutput.ContentType)

	if needsResize {
		log.Printf("Resizing photo %s (original: %dx%d, max: %dx%d)", payload.S3Key, img.Bounds().Dx(), img.Bounds().Dy(), maxWidth, maxHeight)
		resizedImg := resize.Thumbnail(maxWidth, maxHeight, img, resize.Lanczos3)
		var buf bytes.Buffer
		err = jpeg.Encode(&buf, resizedImg, &jpeg.Options{Quality: 85})
		if err != nil {
			log.Printf("Error encoding resized photo %s: %v", payload.S3Key, err)
			return fmt.Errorf("failed to re-encode resized photo: %w", err)
		}
		processedData = buf.Bytes()
		contentType = "image/jpeg"
		log.Printf("Resized photo %s to %dx%d", payload.S3Key, resizedImg.Bounds().Dx(), resizedImg.Bounds().Dy())

		// Check size again after resizing/re-encoding
		if int64(len(processedData)) > maxSizeBytes {
			log.Printf("Resized photo %s still exceeds max size (%d > %d bytes). Skipping.", payload.S3Key, len(processedData), maxSizeBytes)
			return fmt.Errorf("resized photo still exceeds max size: %w", asynq.SkipRetry)
		}
	} else {
		processedData = imgData
	}

	_, err = p.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.cfg.AwsS3Bucket),
		Key:         aws.String(processedKey),
		Body:        bytes.NewReader(processedData),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Printf("Error uploading processed photo %s to S3: %v", processedKey, err)
		return fmt.Errorf("failed to upload processed photo: %w", err)
	}

	_, err = p.listingService.AttachPhoto(ctx, listingID, processedKey)
	if err != nil {
		if services.IsValidationError(err) {
			// Photo cap reached; the upload stays in S3 but never attaches.
			log.Printf("Photo %s not attached to listing %s: %v", processedKey, payload.ListingID, err)
			return fmt.Errorf("photo cap reached: %w", asynq.SkipRetry)
		}
		log.Printf("Error attaching photo key %s to listing %s: %v", processedKey, payload.ListingID, err)
		return fmt.Errorf("failed to update listing with processed photo: %w", err)
	}

	log.Printf("Photo task processed successfully: Key=%s, ListingID=%s", processedKey, payload.ListingID)
	return nil
}
