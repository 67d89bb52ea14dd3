/*
 * backend/internal/errorcapture/error_capture.go
 *
 * Redirects stderr noise from the Kubernetes client libraries (klog) into
 * the application log and surfaces auth-related failures as events.
 */

package errorcapture

import (
	"bytes"
	"flag"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"

	"k8s.io/klog/v2"
)

// Capture handles stderr output from the Kubernetes client library.
type Capture struct {
	mu          sync.RWMutex
	buffer      *bytes.Buffer // rolling tail of captured stderr
	originalErr *os.File
	pipeReader  *os.File
	pipeWriter  *os.File
	capturing   bool
}

var (
	global       *Capture
	eventEmitter func(string)
	logSink      func(level string, message string)
	// Word-boundary matching avoids false positives from resource names like
	// "podidentityassociations".
	authPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\btokens?\b`),
		regexp.MustCompile(`\bsso\b`),
		regexp.MustCompile(`\bexpired\b`),
		regexp.MustCompile(`\bauthentication\b`),
		regexp.MustCompile(`\bunauthorized\b`),
		regexp.MustCompile(`\bforbidden\b`),
		regexp.MustCompile(`\bpermission\s+denied\b`),
		regexp.MustCompile(`\baccess\s+denied\b`),
	}
)

// Init installs a stderr capture for klog/k8s client noise.
func Init() {
	global = &Capture{buffer: &bytes.Buffer{}}

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	klogFlags.Set("logtostderr", "true")
	klogFlags.Set("stderrthreshold", "0")
	klogFlags.Set("v", "2")

	global.start()
}

func (c *Capture) start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.capturing {
		return
	}

	r, w, err := os.Pipe()
	if err != nil {
		if logSink != nil {
			logSink("error", "Failed to create pipe for stderr capture: "+err.Error())
		}
		return
	}

	c.pipeReader = r
	c.pipeWriter = w
	c.originalErr = os.Stderr
	os.Stderr = w
	c.capturing = true

	go c.readPipe()
}

// readPipe continuously reads from the stderr pipe.
func (c *Capture) readPipe() {
	scanner := make([]byte, 4096)
	for {
		n, err := c.pipeReader.Read(scanner)
		if err != nil {
			if err != io.EOF && logSink != nil {
				logSink("error", "Error reading stderr pipe: "+err.Error())
			}
			break
		}

		if n == 0 {
			continue
		}

		chunk := scanner[:n]

		c.mu.Lock()
		c.buffer.Write(chunk)
		trimBuffer(c.buffer, 100000, 50000)
		c.mu.Unlock()

		c.emitAuthErrors(string(chunk))

		if logSink != nil {
			c.emitToLogSink(chunk)
		}
	}
}

// isAuthRelated determines if a log message is related to authentication or token issues.
func isAuthRelated(lower string) bool {
	for _, pattern := range authPatterns {
		if pattern.MatchString(lower) {
			return true
		}
	}
	return false
}

// parseKlogSeverity extracts klog severity for lines starting with the standard prefix.
func parseKlogSeverity(line string) (byte, bool) {
	if len(line) < 2 {
		return 0, false
	}
	sev := line[0]
	switch sev {
	case 'I', 'W', 'E', 'F', 'D':
		if line[1] >= '0' && line[1] <= '9' {
			return sev, true
		}
	}
	return 0, false
}

func isErrorSeverity(sev byte) bool {
	return sev == 'E' || sev == 'F'
}

// forEachTrimmedLine iterates through non-empty, trimmed lines in input.
func forEachTrimmedLine(input string, fn func(string)) {
	for line := range strings.SplitSeq(input, "\n") {
		msg := strings.TrimSpace(line)
		if msg == "" {
			continue
		}
		fn(msg)
	}
}

// trimBuffer reduces buffer growth by keeping only the newest bytes.
func trimBuffer(buf *bytes.Buffer, maxLen, keep int) {
	if buf.Len() <= maxLen {
		return
	}
	data := buf.Bytes()
	if keep > len(data) {
		keep = len(data)
	}
	buf.Reset()
	if keep > 0 {
		buf.Write(data[len(data)-keep:])
	}
}

// emitAuthErrors forwards auth-related error lines to the event emitter so
// the frontend can prompt for credential refresh.
func (c *Capture) emitAuthErrors(output string) {
	forEachTrimmedLine(output, func(msg string) {
		if sev, ok := parseKlogSeverity(msg); ok && !isErrorSeverity(sev) {
			return
		}
		if !isAuthRelated(strings.ToLower(msg)) {
			return
		}
		if eventEmitter != nil {
			eventEmitter(msg)
		}
	})
}

// SetEventEmitter configures a callback invoked when auth-related errors are captured.
func SetEventEmitter(emitter func(string)) {
	eventEmitter = emitter
}

// SetLogSink configures a callback that receives every captured stderr line.
func SetLogSink(fn func(level string, message string)) {
	logSink = fn
}

// emitToLogSink sends captured lines to the configured log sink with a
// best-effort severity derived from the klog prefix.
func (c *Capture) emitToLogSink(chunk []byte) {
	forEachTrimmedLine(string(chunk), func(msg string) {
		level := "info"
		lower := strings.ToLower(msg)
		switch {
		case strings.HasPrefix(msg, "E") || strings.Contains(lower, "error"):
			level = "error"
		case strings.HasPrefix(msg, "W") || strings.Contains(lower, "warning"):
			level = "warn"
		case strings.HasPrefix(msg, "I"):
			level = "info"
		case strings.HasPrefix(msg, "D"):
			level = "debug"
		}

		logSink(level, msg)
	})
}
