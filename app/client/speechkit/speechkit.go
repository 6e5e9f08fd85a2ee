package speechkit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"zetacore/app/config"

	"github.com/samber/do"
	ycsdk "github.com/yandex-cloud/go-sdk"
	"github.com/yandex-cloud/go-sdk/iamkey"
)

const chunkSize = 4096

// Client transcribes spoken utterances for the voice endpoint. Unlike a
// live-stream transcriber it works one utterance at a time: the whole audio
// body is streamed in, the recognizer is drained, and the final hypotheses
// are joined into a single prompt.
type Client struct {
	cfg *config.Config
	sdk *ycsdk.SDK
}

func NewClient(di *do.Injector) (*Client, error) {
	ctx := do.MustInvoke[context.Context](di)
	cfg := do.MustInvoke[*config.Config](di)

	keyBytes, err := os.ReadFile(cfg.Speech.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("could not read service account key: %w", err)
	}

	var key iamkey.Key
	if err = json.Unmarshal(keyBytes, &key); err != nil {
		return nil, fmt.Errorf("could not parse service account key: %w", err)
	}

	creds, err := ycsdk.ServiceAccountKey(&key)
	if err != nil {
		return nil, fmt.Errorf("could not create service account key: %w", err)
	}

	sdk, err := ycsdk.Build(ctx, ycsdk.Config{
		Credentials: creds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Yandex SDK: %w", err)
	}

	return &Client{
		cfg: cfg,
		sdk: sdk,
	}, nil
}

func (c *Client) start(ctx context.Context) (*Handle, error) {
	ctx, cancel := context.WithCancel(ctx)

	client, err := c.sdk.AI().STTV3().Recognizer().RecognizeStreaming(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Handle{
		client: client,
		cancel: cancel,
	}, nil
}

// Transcribe recognizes a single 16-kHz LINEAR16 PCM utterance.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	handle, err := c.start(ctx)
	if err != nil {
		return "", err
	}
	defer handle.Close()

	if err = handle.SendConfig(); err != nil {
		return "", fmt.Errorf("failed to send config: %w", err)
	}

	for off := 0; off < len(audio); off += chunkSize {
		end := min(off+chunkSize, len(audio))
		if err = handle.Send(audio[off:end]); err != nil {
			return "", fmt.Errorf("failed to send audio chunk: %w", err)
		}
	}

	if err = handle.CloseSend(); err != nil {
		return "", fmt.Errorf("failed to close send: %w", err)
	}

	var phrases []string
	for {
		final, err := handle.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		phrases = append(phrases, final...)
	}

	return strings.Join(phrases, " "), nil
}
