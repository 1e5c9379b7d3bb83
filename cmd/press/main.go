// Command press compresses and decompresses files through a streaming
// session, so arbitrarily large files never load fully into memory.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/presslib/press"
	"github.com/presslib/press/codec"
)

func main() {
	decompress := flag.Bool("d", false, "Decompress instead of compress")
	algoName := flag.String("algo", "zstd", "Algorithm: zstd, lz4, s2, snappy, gzip, zlib, brotli, xz")
	levelName := flag.String("level", "default", "Compression level: fast, default, best")
	output := flag.String("o", "", "Output file (required)")
	verify := flag.Bool("verify", false, "After compressing, decompress the result and compare digests")
	flag.Parse()

	if flag.NArg() != 1 || *output == "" {
		fmt.Fprintln(os.Stderr, "Usage: press [-d] [-algo NAME] [-level LEVEL] [-verify] -o OUTPUT INPUT")
		os.Exit(1)
	}

	algo, err := codec.ParseAlgorithm(*algoName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	level, err := parseLevel(*levelName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(algo, level, *decompress, *verify, flag.Arg(0), *output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseLevel(name string) (press.Level, error) {
	switch name {
	case "fast":
		return press.LevelFastest, nil
	case "default":
		return press.LevelDefault, nil
	case "best":
		return press.LevelBest, nil
	default:
		return 0, fmt.Errorf("unknown level %q", name)
	}
}

func run(algo press.Algorithm, level press.Level, decompress, verify bool, inPath, outPath string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	mode := press.ModeCompress
	if decompress {
		mode = press.ModeDecompress
	}
	session, err := press.StartSession(algo, mode, press.WithLevel(level))
	if err != nil {
		return err
	}
	defer session.Abort()

	// Digest the input as it streams by; -verify compares it against the
	// digest of a decompression round-trip.
	src := press.NewChecksumReader(in)
	written, err := pump(session, src, out)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	fmt.Printf("%s: %s -> %s (%d bytes written)\n", mode, inPath, outPath, written)

	if verify {
		if decompress {
			return fmt.Errorf("-verify only applies when compressing")
		}
		if err := verifyRoundTrip(algo, outPath, src.Sum64()); err != nil {
			return err
		}
		fmt.Println("verify: round-trip digest matches")
	}
	return nil
}

// pump drives a session from r to w, honoring the OkMoreOutputAvailable
// backpressure signal.
func pump(s *press.Session, r io.Reader, w io.Writer) (int64, error) {
	inBuf := make([]byte, 256<<10)
	outBuf := make([]byte, 256<<10)
	var written int64

	for {
		n, readErr := r.Read(inBuf)
		chunk := inBuf[:n]
		for {
			st, consumed, produced := s.Feed(chunk, outBuf)
			if st.IsError() {
				return written, fmt.Errorf("feed failed: %s", st)
			}
			if produced > 0 {
				if _, err := w.Write(outBuf[:produced]); err != nil {
					return written, err
				}
				written += int64(produced)
			}
			chunk = chunk[consumed:]
			if st == press.Ok {
				if len(chunk) > 0 && consumed == 0 {
					// Decompress hit end of stream with input left over.
					return written, fmt.Errorf("trailing data after end of stream")
				}
				if len(chunk) == 0 {
					break
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return written, readErr
		}
	}

	for {
		st, produced := s.Finish(outBuf)
		if st.IsError() {
			return written, fmt.Errorf("finish failed: %s", st)
		}
		if produced > 0 {
			if _, err := w.Write(outBuf[:produced]); err != nil {
				return written, err
			}
			written += int64(produced)
		}
		if st == press.Ok {
			return written, nil
		}
	}
}

// verifyRoundTrip decompresses the produced file and checks its digest
// against the digest of the original input.
func verifyRoundTrip(algo press.Algorithm, path string, want uint64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	session, err := press.StartSession(algo, press.ModeDecompress)
	if err != nil {
		return err
	}
	defer session.Abort()

	digest := xxhash.New()
	if _, err := pump(session, f, digestWriter{digest}); err != nil {
		return err
	}
	if got := digest.Sum64(); got != want {
		return fmt.Errorf("round-trip digest mismatch: got %x, want %x", got, want)
	}
	return nil
}

type digestWriter struct {
	d *xxhash.Digest
}

func (w digestWriter) Write(p []byte) (int, error) {
	return w.d.Write(p)
}
