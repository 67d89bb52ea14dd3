package logtail

import (
	"context"
	"errors"
	"io"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/utils/ptr"
)

// Fetcher is the boundary to whatever supplies raw log text. It returns up
// to tailLines of the most recent log lines as a single string.
type Fetcher interface {
	FetchPodLogs(ctx context.Context, namespace, pod, container string, tailLines int) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, namespace, pod, container string, tailLines int) (string, error)

// FetchPodLogs implements Fetcher.
func (f FetcherFunc) FetchPodLogs(ctx context.Context, namespace, pod, container string, tailLines int) (string, error) {
	return f(ctx, namespace, pod, container, tailLines)
}

// KubeFetcher fetches pod logs through the Kubernetes API.
type KubeFetcher struct {
	client kubernetes.Interface
}

// NewKubeFetcher constructs a KubeFetcher.
func NewKubeFetcher(client kubernetes.Interface) (*KubeFetcher, error) {
	if client == nil {
		return nil, errors.New("logtail: kubernetes client is required")
	}
	return &KubeFetcher{client: client}, nil
}

// FetchPodLogs requests the most recent tailLines of the container's log.
// Timestamps are requested so entries carry a display timestamp and so the
// anchor line stays unique across repeated message text.
func (f *KubeFetcher) FetchPodLogs(ctx context.Context, namespace, pod, container string, tailLines int) (string, error) {
	options := &corev1.PodLogOptions{
		Container:  container,
		Timestamps: true,
	}
	if tailLines > 0 {
		options.TailLines = ptr.To(int64(tailLines))
	}

	req := f.client.CoreV1().Pods(namespace).GetLogs(pod, options)
	stream, err := req.Stream(ctx)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return string(data), nil
}
