package ocr

import (
	"context"
	"fmt"
	"log/slog"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// imageAnnotator is the slice of the generated Vision client the engine
// needs. Tests substitute a fake.
type imageAnnotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// VisionEngine runs OCR through the Google Cloud Vision document text
// detection API. Network-bound; failures are split into transient and
// permanent so callers can retry only what is worth retrying.
type VisionEngine struct {
	client imageAnnotator
	logger *slog.Logger
}

// NewVisionEngine creates a Vision-backed engine. credentialsFile may be
// empty, in which case application default credentials are used.
func NewVisionEngine(ctx context.Context, credentialsFile string, logger *slog.Logger) (*VisionEngine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &VisionEngine{client: client, logger: logger}, nil
}

// NewVisionEngineWithClient wraps an existing client (used in tests).
func NewVisionEngineWithClient(client imageAnnotator, logger *slog.Logger) *VisionEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &VisionEngine{client: client, logger: logger}
}

// ExtractText implements Engine.
func (e *VisionEngine) ExtractText(ctx context.Context, image []byte) (string, error) {
	const op = "vision.extract_text"
	if len(image) == 0 {
		return "", &PermanentError{Op: op, Err: ErrUnprocessableImage}
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: image},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
		}},
	}
	resp, err := e.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		e.logger.Error("ocr.vision.failed", "error", err)
		return "", classifyRPCError(op, err)
	}
	if len(resp.Responses) == 0 {
		return "", &PermanentError{Op: op, Err: ErrNoText}
	}
	res := resp.Responses[0]
	if res.Error != nil {
		// Per-image failures arrive as an embedded rpc status, not a
		// transport error.
		err := status.ErrorProto(res.Error)
		e.logger.Error("ocr.vision.failed", "error", err)
		return "", classifyRPCError(op, err)
	}
	if res.FullTextAnnotation == nil || res.FullTextAnnotation.Text == "" {
		return "", &PermanentError{Op: op, Err: ErrNoText}
	}

	text := res.FullTextAnnotation.Text
	e.logger.Debug("ocr.vision.ok", "bytes_in", len(image), "chars_out", len(text))
	return text, nil
}

// Close releases the underlying client.
func (e *VisionEngine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// classifyRPCError maps gRPC status codes onto the transient/permanent
// taxonomy. Unknown codes are treated as permanent.
func classifyRPCError(op string, err error) error {
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Canceled:
			// Cancellation comes from the caller's context, not the
			// backend; keep it recognizable to errors.Is.
			return fmt.Errorf("%s: %w", op, context.Canceled)
		case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Aborted:
			return &TransientError{Op: op, Err: err}
		case codes.Unauthenticated, codes.PermissionDenied:
			return &PermanentError{Op: op, Err: fmt.Errorf("%w: %v", ErrMissingCredentials, err)}
		}
	}
	return &PermanentError{Op: op, Err: err}
}
