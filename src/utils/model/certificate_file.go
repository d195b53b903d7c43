package model

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

var ErrEmptyFile = errors.New("certificate file is empty")

// Certificate blob owned by a single draft or bulk entry
type CertificateFile struct {
	Name     string
	Size     int64
	MimeType string

	content []byte
}

func NewCertificateFile(name string, content []byte) (self *CertificateFile, err error) {
	if len(content) == 0 {
		err = ErrEmptyFile
		return
	}

	self = new(CertificateFile)
	self.Name = filepath.Base(name)
	self.Size = int64(len(content))
	self.MimeType = mimetype.Detect(content).String()
	self.content = content
	return
}

func LoadCertificateFile(path string) (self *CertificateFile, err error) {
	/* #nosec */
	content, err := os.ReadFile(path)
	if err != nil {
		return
	}
	return NewCertificateFile(path, content)
}

// New reader over the file content, every call starts from the beginning
func (self *CertificateFile) Reader() io.Reader {
	return bytes.NewReader(self.content)
}
