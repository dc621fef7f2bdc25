package systems

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/spaghettifunk/cardforge/engine/assets"
	"github.com/spaghettifunk/cardforge/engine/containers"
	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/renderer"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
)

type TextureSystemConfig struct {
	/** @brief Decoded images larger than this on either side are downscaled. Zero disables. */
	MaxTextureDimension uint32
	/** @brief Capacity of the completion queue drained by Update. */
	CompletionQueueSize int
	/** @brief Flip images vertically so row zero is the bottom. */
	FlipY bool
}

/** @brief Payload of EVENT_CODE_TEXTURE_FAILED. */
type TextureFailure struct {
	RequestID string
	Channel   metadata.TextureChannel
	Path      string
	Err       error
}

/**
 * @brief Turns image files into textures bound to the card's material
 * channels. Decoding runs on the job system; results are handed to the
 * render thread through a queue and published by Update. Each channel keeps
 * a token so only the most recently issued request can publish.
 */
type TextureSystem struct {
	config   TextureSystemConfig
	jobs     *JobSystem
	assets   *assets.AssetManager
	renderer *renderer.Renderer
	store    *ConfigurationStore
	events   *core.EventSystem

	mu      sync.Mutex
	tokens  map[metadata.TextureChannel]uint64
	watched map[string]metadata.TextureChannel

	completions *containers.RingQueue[*metadata.TextureLoadParams]
	closed      atomic.Bool
	nextID      uint32
}

func NewTextureSystem(config TextureSystemConfig, js *JobSystem, am *assets.AssetManager, r *renderer.Renderer, store *ConfigurationStore, events *core.EventSystem) (*TextureSystem, error) {
	if config.CompletionQueueSize <= 0 {
		err := fmt.Errorf("func NewTextureSystem - config.CompletionQueueSize must be > 0: %w", core.ErrInvalidParameter)
		core.LogError(err.Error())
		return nil, err
	}
	return &TextureSystem{
		config:      config,
		jobs:        js,
		assets:      am,
		renderer:    r,
		store:       store,
		events:      events,
		tokens:      make(map[metadata.TextureChannel]uint64),
		watched:     make(map[string]metadata.TextureChannel),
		completions: containers.NewRingQueue[*metadata.TextureLoadParams](config.CompletionQueueSize),
	}, nil
}

// issue hands out the next token for channel, superseding every request
// issued before it.
func (ts *TextureSystem) issue(channel metadata.TextureChannel) uint64 {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.tokens[channel]++
	return ts.tokens[channel]
}

// revoke takes back token when its request never started. A token that was
// already superseded is left alone.
func (ts *TextureSystem) revoke(channel metadata.TextureChannel, token uint64) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.tokens[channel] == token {
		ts.tokens[channel]--
	}
}

func (ts *TextureSystem) current(channel metadata.TextureChannel) uint64 {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.tokens[channel]
}

/**
 * @brief Starts decoding the image at path for channel. Safe to call from
 * any goroutine.
 * @return The request identifier used in logs and failure notices.
 */
func (ts *TextureSystem) Upload(channel metadata.TextureChannel, path string) (string, error) {
	return ts.submit(&metadata.TextureLoadParams{Channel: channel, ResourceName: path})
}

// UploadBytes is Upload for an image already in memory.
func (ts *TextureSystem) UploadBytes(channel metadata.TextureChannel, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("texture `%s` is empty: %w", name, core.ErrInvalidParameter)
	}
	return ts.submit(&metadata.TextureLoadParams{Channel: channel, ResourceName: name, Data: data})
}

func (ts *TextureSystem) submit(params *metadata.TextureLoadParams) (string, error) {
	if !params.Channel.Valid() {
		return "", fmt.Errorf("texture channel %d: %w", params.Channel, core.ErrUnknownEnum)
	}
	if ts.closed.Load() {
		return "", core.ErrAlreadyShutdown
	}
	params.RequestID = uuid.NewString()
	params.Token = ts.issue(params.Channel)
	core.LogInfo("texture upload requested", "request", params.RequestID, "channel", params.Channel.String(), "name", params.ResourceName)

	err := ts.jobs.Submit(metadata.JobTask{
		Name:        "texture:" + params.RequestID,
		InputParams: params,
		OnStart:     ts.decode,
		OnComplete: func(result interface{}) {
			ts.complete(result.(*metadata.TextureLoadParams))
		},
		OnFailure: func(input interface{}, err error) {
			p := input.(*metadata.TextureLoadParams)
			p.Err = err
			ts.complete(p)
		},
	})
	if err != nil {
		// An earlier upload still in flight stays current.
		ts.revoke(params.Channel, params.Token)
		core.LogWarn("texture upload not started", "request", params.RequestID, "channel", params.Channel.String(), "err", err)
		return "", err
	}
	return params.RequestID, nil
}

// decode runs on a worker. It never touches the renderer or the store.
func (ts *TextureSystem) decode(input interface{}) (interface{}, error) {
	params := input.(*metadata.TextureLoadParams)
	imageParams := &metadata.ImageResourceParams{
		FlipY:        ts.config.FlipY,
		MaxDimension: ts.config.MaxTextureDimension,
	}

	var res *metadata.Resource
	var err error
	if len(params.Data) > 0 {
		res, err = ts.assets.DecodeAsset(params.ResourceName, params.Data, metadata.ResourceTypeImage, imageParams)
	} else {
		res, err = ts.assets.LoadAsset(params.ResourceName, metadata.ResourceTypeImage, imageParams)
	}
	if err != nil {
		return nil, err
	}
	image, ok := res.Data.(*metadata.ImageResourceData)
	if !ok {
		return nil, fmt.Errorf("%s: %w", params.ResourceName, core.ErrTextureDecode)
	}
	params.Image = image
	params.Data = nil
	return params, nil
}

// complete hands a finished request to the render thread.
func (ts *TextureSystem) complete(params *metadata.TextureLoadParams) {
	for !ts.closed.Load() {
		if err := ts.completions.Enqueue(params); err == nil {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

/**
 * @brief Publishes finished uploads. Must run on the render thread, once per
 * frame before the configuration is read.
 */
func (ts *TextureSystem) Update() {
	for _, params := range ts.completions.Drain() {
		ts.publish(params)
	}
}

func (ts *TextureSystem) publish(params *metadata.TextureLoadParams) {
	if params.Token != ts.current(params.Channel) {
		core.LogDebug("discarding superseded texture upload", "request", params.RequestID, "channel", params.Channel.String())
		return
	}
	if params.Err != nil {
		ts.fail(params, params.Err)
		return
	}

	img := params.Image
	texture := &metadata.Texture{
		ID:            ts.nextID,
		Name:          fmt.Sprintf("%s:%s", params.Channel, params.RequestID),
		Width:         img.Width,
		Height:        img.Height,
		ChannelCount:  img.ChannelCount,
		FilterMinify:  metadata.TextureFilterModeLinear,
		FilterMagnify: metadata.TextureFilterModeLinear,
		RepeatU:       metadata.TextureRepeatRepeat,
		RepeatV:       metadata.TextureRepeatRepeat,
		Pixels:        img.Pixels,
	}
	if img.HasTransparency {
		texture.Flags |= metadata.TextureFlagBits(metadata.TextureFlagHasTransparency)
	}
	// Only the colour map holds colour; the others are linear data.
	if params.Channel == metadata.TextureChannelColor {
		texture.Flags |= metadata.TextureFlagBits(metadata.TextureFlagSRGB)
	}
	if err := ts.renderer.TextureCreate(texture.Pixels, texture); err != nil {
		ts.fail(params, err)
		return
	}
	ts.nextID++

	previous, err := ts.store.SetTexture(params.Channel, texture)
	if err != nil {
		ts.renderer.TextureDestroy(texture)
		ts.fail(params, err)
		return
	}
	ts.renderer.TextureDestroy(previous)
	core.LogInfo("texture published", "request", params.RequestID, "channel", params.Channel.String(), "width", texture.Width, "height", texture.Height)
}

func (ts *TextureSystem) fail(params *metadata.TextureLoadParams, err error) {
	core.LogWarn("texture upload failed", "request", params.RequestID, "channel", params.Channel.String(), "name", params.ResourceName, "err", err)
	if ts.events != nil {
		ts.events.Fire(core.EventContext{
			Type: core.EVENT_CODE_TEXTURE_FAILED,
			Data: &TextureFailure{
				RequestID: params.RequestID,
				Channel:   params.Channel,
				Path:      params.ResourceName,
				Err:       err,
			},
		})
	}
}

/**
 * @brief Unbinds the channel and releases its texture. Uploads still in
 * flight for the channel are discarded when they finish.
 */
func (ts *TextureSystem) ClearChannel(channel metadata.TextureChannel) error {
	if !channel.Valid() {
		return fmt.Errorf("texture channel %d: %w", channel, core.ErrUnknownEnum)
	}
	ts.issue(channel)
	previous, err := ts.store.SetTexture(channel, nil)
	if err != nil {
		return err
	}
	ts.renderer.TextureDestroy(previous)
	return nil
}

/**
 * @brief Re-uploads a file to the same channel whenever it changes on disk.
 */
func (ts *TextureSystem) Watch(channel metadata.TextureChannel, path string) error {
	if !channel.Valid() {
		return fmt.Errorf("texture channel %d: %w", channel, core.ErrUnknownEnum)
	}
	err := ts.assets.Watch(path, func(changed string) {
		if _, err := ts.Upload(channel, changed); err != nil {
			core.LogWarn("hot reload failed", "path", changed, "err", err)
		}
	})
	if err != nil {
		return err
	}
	ts.mu.Lock()
	ts.watched[path] = channel
	ts.mu.Unlock()
	return nil
}

// ReleaseGPU destroys the GPU side of every bound texture. The textures stay
// bound with their pixels so Reupload can restore them.
func (ts *TextureSystem) ReleaseGPU() {
	for _, channel := range metadata.TextureChannels {
		ts.renderer.TextureDestroy(ts.store.Texture(channel))
	}
}

// Reupload recreates the GPU side of every bound texture after the renderer
// was re-initialized.
func (ts *TextureSystem) Reupload() error {
	for _, channel := range metadata.TextureChannels {
		texture := ts.store.Texture(channel)
		if texture == nil || texture.InternalData != nil {
			continue
		}
		if err := ts.renderer.TextureCreate(texture.Pixels, texture); err != nil {
			return err
		}
	}
	return nil
}

/**
 * @brief Stops accepting uploads, drops pending completions and releases
 * every texture. The job system should be shut down afterwards.
 */
func (ts *TextureSystem) Shutdown() error {
	if ts.closed.Swap(true) {
		return nil
	}
	ts.mu.Lock()
	paths := make([]string, 0, len(ts.watched))
	for p := range ts.watched {
		paths = append(paths, p)
	}
	ts.watched = map[string]metadata.TextureChannel{}
	ts.mu.Unlock()
	for _, p := range paths {
		if err := ts.assets.Unwatch(p); err != nil {
			core.LogWarn("failed to stop watching texture", "path", p, "err", err)
		}
	}

	ts.completions.Drain()
	for _, channel := range metadata.TextureChannels {
		previous, err := ts.store.SetTexture(channel, nil)
		if err != nil {
			return err
		}
		ts.renderer.TextureDestroy(previous)
	}
	return nil
}
