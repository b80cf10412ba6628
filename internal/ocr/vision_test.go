package ocr

import (
	"context"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// fakeAnnotator replays a canned batch response and records the requests
// it saw.
type fakeAnnotator struct {
	resp *visionpb.BatchAnnotateImagesResponse
	err  error
	reqs []*visionpb.BatchAnnotateImagesRequest
}

func (f *fakeAnnotator) BatchAnnotateImages(_ context.Context, req *visionpb.BatchAnnotateImagesRequest, _ ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error) {
	f.reqs = append(f.reqs, req)
	return f.resp, f.err
}

func (f *fakeAnnotator) Close() error { return nil }

func textResponse(text string) *visionpb.BatchAnnotateImagesResponse {
	return &visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{{
			FullTextAnnotation: &visionpb.TextAnnotation{Text: text},
		}},
	}
}

func TestVisionExtractText(t *testing.T) {
	fake := &fakeAnnotator{resp: textResponse("N° de Carné: 12345-AB")}
	e := NewVisionEngineWithClient(fake, nil)

	text, err := e.ExtractText(context.Background(), []byte{0x89, 0x50})
	require.NoError(t, err)
	assert.Equal(t, "N° de Carné: 12345-AB", text)

	require.Len(t, fake.reqs, 1)
	require.Len(t, fake.reqs[0].Requests, 1)
	annReq := fake.reqs[0].Requests[0]
	assert.Equal(t, []byte{0x89, 0x50}, annReq.Image.Content)
	require.Len(t, annReq.Features, 1)
	assert.Equal(t, visionpb.Feature_DOCUMENT_TEXT_DETECTION, annReq.Features[0].Type)
}

func TestVisionExtractTextEmptyImage(t *testing.T) {
	fake := &fakeAnnotator{}
	e := NewVisionEngineWithClient(fake, nil)

	_, err := e.ExtractText(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnprocessableImage)
	assert.Empty(t, fake.reqs, "backend must not be called for empty input")
}

func TestVisionExtractTextRPCFailureIsClassified(t *testing.T) {
	fake := &fakeAnnotator{err: status.Error(codes.Unavailable, "backend hiccup")}
	e := NewVisionEngineWithClient(fake, nil)

	_, err := e.ExtractText(context.Background(), []byte{1})
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestVisionExtractTextEmbeddedResponseError(t *testing.T) {
	fake := &fakeAnnotator{resp: &visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{{
			Error: status.New(codes.InvalidArgument, "bad image payload").Proto(),
		}},
	}}
	e := NewVisionEngineWithClient(fake, nil)

	_, err := e.ExtractText(context.Background(), []byte{1})
	require.Error(t, err)
	assert.False(t, IsTransient(err))
	var pe *PermanentError
	assert.ErrorAs(t, err, &pe)
}

func TestVisionExtractTextNoAnnotation(t *testing.T) {
	for _, resp := range []*visionpb.BatchAnnotateImagesResponse{
		{},
		{Responses: []*visionpb.AnnotateImageResponse{{}}},
		textResponse(""),
	} {
		e := NewVisionEngineWithClient(&fakeAnnotator{resp: resp}, nil)
		_, err := e.ExtractText(context.Background(), []byte{1})
		assert.ErrorIs(t, err, ErrNoText)
	}
}

func TestVisionExtractTextCancellation(t *testing.T) {
	fake := &fakeAnnotator{err: status.Error(codes.Canceled, "context canceled")}
	e := NewVisionEngineWithClient(fake, nil)

	_, err := e.ExtractText(context.Background(), []byte{1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsTransient(err))
}
