package replay

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const (
	scanInitial = 64 * 1024
	scanMax     = 8 * 1024 * 1024
)

// zstdFile fecha o decoder e o arquivo juntos.
type zstdFile struct {
	dec *zstd.Decoder
	f   *os.File
}

func (z *zstdFile) Read(p []byte) (int, error) { return z.dec.Read(p) }

func (z *zstdFile) Close() error {
	z.dec.Close()
	return z.f.Close()
}

// sessionFile retorna o caminho de name ou name.zst, o que existir.
func sessionFile(dir, name string) (string, bool) {
	for _, p := range []string{filepath.Join(dir, name), filepath.Join(dir, name+".zst")} {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, true
		}
	}
	return "", false
}

// openSessionFile abre um jsonl da sessão, descomprimindo .zst quando preciso.
func openSessionFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) != ".zst" {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("falha ao abrir zstd %s: %w", path, err)
	}
	return &zstdFile{dec: dec, f: f}, nil
}

// forEachLine chama fn para cada linha não vazia do jsonl (1-based).
func forEachLine(dir, name string, required bool, fn func(lineNo int, line []byte) error) error {
	path, ok := sessionFile(dir, name)
	if !ok {
		if required {
			return fmt.Errorf("arquivo %s ausente em %s: %w", name, dir, fs.ErrNotExist)
		}
		return nil
	}

	r, err := openSessionFile(path)
	if err != nil {
		return fmt.Errorf("falha ao abrir %s: %w", path, err)
	}
	defer r.Close()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, scanInitial), scanMax)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := fn(lineNo, line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("falha ao ler %s: %w", path, err)
	}
	return nil
}

// fingerprint resume tamanho e data de modificação dos arquivos da sessão.
func fingerprint(dir string) string {
	var buf bytes.Buffer
	for _, name := range sessionFiles {
		path, ok := sessionFile(dir, name)
		if !ok {
			fmt.Fprintf(&buf, "%s:-;", name)
			continue
		}
		st, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(&buf, "%s:-;", name)
			continue
		}
		fmt.Fprintf(&buf, "%s:%d:%d;", filepath.Base(path), st.Size(), st.ModTime().UnixNano())
	}
	return buf.String()
}
