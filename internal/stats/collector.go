// Package stats computes per-file statistics: size, line count and modification time.
package stats

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/temirov/dirscope/internal/types"
)

const (
	// chunkSize is the number of bytes read per step while counting lines.
	chunkSize = 32 * 1024

	reasonBinaryContent = "binary content"
	reasonNotRegular    = "not a regular file"
	errorOpenFileFormat = "opening %s: %w"
	errorReadFileFormat = "reading %s: %w"
)

// ErrBinaryContent reports a file whose first chunk looks binary.
var ErrBinaryContent = errors.New(reasonBinaryContent)

// Options selects which statistics are collected.
type Options struct {
	Size  bool
	Lines bool
	Mtime bool
}

// OptionsFromConfiguration returns the statistics requested by a traversal configuration.
func OptionsFromConfiguration(configuration types.Configuration) Options {
	return Options{Size: configuration.CollectSize, Lines: configuration.CollectLines, Mtime: configuration.CollectMtime}
}

// Any reports whether at least one statistic is requested.
func (options Options) Any() bool {
	return options.Size || options.Lines || options.Mtime
}

// Collector computes file statistics. It holds no per-call state and is safe for concurrent use.
type Collector struct {
	bufferPool sync.Pool
}

// NewCollector constructs a Collector.
func NewCollector() *Collector {
	return &Collector{
		bufferPool: sync.Pool{New: func() any {
			buffer := make([]byte, chunkSize)
			return &buffer
		}},
	}
}

// Collect returns the requested statistics for the file at absolutePath described by info.
// A nil info or statError marks every requested statistic unavailable. Lines are only counted
// for regular files; binary files report lines as unavailable, never zero.
func (collector *Collector) Collect(absolutePath string, info fs.FileInfo, statError error, options Options) types.FileStats {
	var fileStats types.FileStats
	if statError != nil || info == nil {
		reason := "metadata unavailable"
		if statError != nil {
			reason = statError.Error()
		}
		markRequestedUnavailable(&fileStats, options, reason)
		return fileStats
	}

	if options.Size {
		sizeBytes := info.Size()
		fileStats.SizeBytes = &sizeBytes
	}
	if options.Mtime {
		modifiedAt := info.ModTime()
		fileStats.ModifiedAt = &modifiedAt
	}
	if !options.Lines {
		return fileStats
	}
	if !info.Mode().IsRegular() {
		fileStats.MarkUnavailable(types.StatLines, reasonNotRegular)
		return fileStats
	}

	lineCount, countError := collector.CountFileLines(absolutePath)
	switch {
	case errors.Is(countError, ErrBinaryContent):
		fileStats.MarkUnavailable(types.StatLines, reasonBinaryContent)
	case countError != nil:
		markRequestedUnavailable(&fileStats, options, countError.Error())
	default:
		fileStats.LineCount = &lineCount
	}
	return fileStats
}

// CountFileLines opens the file at absolutePath and counts its lines.
//
// #nosec G304
func (collector *Collector) CountFileLines(absolutePath string) (int64, error) {
	fileHandle, openError := os.Open(absolutePath)
	if openError != nil {
		return 0, fmt.Errorf(errorOpenFileFormat, absolutePath, openError)
	}
	defer fileHandle.Close()

	bufferPointer := collector.bufferPool.Get().(*[]byte)
	defer collector.bufferPool.Put(bufferPointer)

	lineCount, countError := countLines(fileHandle, *bufferPointer)
	if countError != nil && !errors.Is(countError, ErrBinaryContent) {
		return 0, fmt.Errorf(errorReadFileFormat, absolutePath, countError)
	}
	return lineCount, countError
}

// countLines counts the lines of reader using buffer as the read chunk. A final line without a
// terminator counts as a line.
func countLines(reader io.Reader, buffer []byte) (int64, error) {
	var lineCount int64
	var lastByte byte
	var totalBytes int64
	firstChunk := true
	for {
		bytesRead, readError := io.ReadFull(reader, buffer)
		if bytesRead > 0 {
			chunk := buffer[:bytesRead]
			if firstChunk {
				if IsBinary(chunk) {
					return 0, ErrBinaryContent
				}
				firstChunk = false
			}
			lineCount += int64(bytes.Count(chunk, []byte{'\n'}))
			lastByte = chunk[bytesRead-1]
			totalBytes += int64(bytesRead)
		}
		if errors.Is(readError, io.EOF) || errors.Is(readError, io.ErrUnexpectedEOF) {
			break
		}
		if readError != nil {
			return 0, readError
		}
	}
	if totalBytes > 0 && lastByte != '\n' {
		lineCount++
	}
	return lineCount, nil
}

func markRequestedUnavailable(fileStats *types.FileStats, options Options, reason string) {
	if options.Size {
		fileStats.MarkUnavailable(types.StatSize, reason)
	}
	if options.Lines {
		fileStats.MarkUnavailable(types.StatLines, reason)
	}
	if options.Mtime {
		fileStats.MarkUnavailable(types.StatModified, reason)
	}
}
