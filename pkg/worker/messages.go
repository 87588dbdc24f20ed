package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stickerwall/pkg/canvas"
	"github.com/matzehuels/stickerwall/pkg/errors"
	"github.com/matzehuels/stickerwall/pkg/layout"
)

// =============================================================================
// Requests
// =============================================================================

// Request is a message to the worker: Init or Generate.
type Request interface {
	RequestID() string
	withDefaultID() Request
	dispatch(ctx context.Context, h requestHandler, st State) State
}

// requestHandler has one method per request kind.
type requestHandler interface {
	handleInit(ctx context.Context, st State, req Init) State
	handleGenerate(ctx context.Context, st State, req Generate) State
}

// Init binds the drawing surface. The surface is transferred on receipt; the
// sender must not use it afterwards.
type Init struct {
	ID      string
	Surface *canvas.Transferable
}

// Generate lays out, composites and encodes one wallpaper.
type Generate struct {
	ID            string
	Width         int
	Height        int
	Density       float64
	SizeVariation float64
	Seed          uint64 // 0 picks a random seed, reported in Generated.Seed
	Rounds        int    // 0 keeps the layout default
	Background    string // see canvas.ParseBackground
	Format        string // png or jpeg
}

func (r Init) RequestID() string     { return r.ID }
func (r Generate) RequestID() string { return r.ID }

func (r Init) withDefaultID() Request {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return r
}

func (r Generate) withDefaultID() Request {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return r
}

func (r Init) dispatch(ctx context.Context, h requestHandler, st State) State {
	return h.handleInit(ctx, st, r)
}

func (r Generate) dispatch(ctx context.Context, h requestHandler, st State) State {
	return h.handleGenerate(ctx, st, r)
}

// =============================================================================
// Responses
// =============================================================================

// Response is a message from the worker: Ready, Generated or Error.
type Response interface {
	// ResponseID is the ID of the request answered, or "" for events not
	// caused by a request.
	ResponseID() string
	isResponse()
}

// Ready reports that the stickers finished loading.
type Ready struct {
	ImageCount int
}

// Generated carries a finished wallpaper.
type Generated struct {
	ID         string
	Blob       []byte
	DataURL    string
	MIME       string
	Seed       uint64
	Placements []layout.Placement
	Drawn      int // placements with a bitmap
	Elapsed    time.Duration
}

// Error reports a failure. It also implements error so a Client can return
// it directly.
type Error struct {
	ID      string
	Code    errors.Code
	Message string
}

func (Ready) ResponseID() string       { return "" }
func (r Generated) ResponseID() string { return r.ID }
func (r Error) ResponseID() string     { return r.ID }

func (Ready) isResponse()     {}
func (Generated) isResponse() {}
func (Error) isResponse()     {}

func (e Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// Err converts e to a structured *errors.Error.
func (e Error) Err() *errors.Error { return errors.New(e.Code, "%s", e.Message) }

// Unwrap exposes the code to errors.Is from pkg/errors.
func (e Error) Unwrap() error { return e.Err() }

// errorResponse builds an Error for err. Plain errors become INTERNAL_ERROR.
func errorResponse(id string, err error) Error {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return Error{ID: id, Code: code, Message: errors.UserMessage(err)}
}
