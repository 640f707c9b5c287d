package util

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CreateCBZ packs files into a CBZ archive in the order given. Entries are
// renamed to zero-padded positions so readers that sort by name keep the
// page order ("10.png" would otherwise sort before "2.png").
func CreateCBZ(files []string, output string) (err error) {
	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("cbz: %w", err)
	}

	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("cbz: close %s: %w", output, cerr)
		}
	}()

	z := zip.NewWriter(out)
	defer func() {
		if cerr := z.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("cbz: finalize %s: %w", output, cerr)
		}
	}()

	width := len(fmt.Sprint(len(files)))
	if width < 3 {
		width = 3
	}

	for i, file := range files {
		name := fmt.Sprintf("%0*d%s", width, i+1, filepath.Ext(file))
		if err := addFileToZip(z, file, name); err != nil {
			return err
		}
	}

	return nil
}

func addFileToZip(z *zip.Writer, file, name string) (err error) {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("cbz: close %s: %w", file, cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}

	header.Name = name
	// screenshots are already compressed
	header.Method = zip.Store

	w, err := z.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(w, f)
	return err
}
