package bulk

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/skillchain/issuer/src/utils/model"
)

var ErrInvalidManifest = errors.New("invalid manifest")

const (
	columnLearnerId      = "learner_id"
	columnIdentifierType = "identifier_type"
	columnFile           = "certificate_file"
	columnTemplateId     = "template_id"
)

// Reads a batch from a CSV file with the header learner_id,identifier_type,certificate_file[,template_id].
// Relative file paths are resolved against the manifest's directory. Empty cells are kept, the batch
// validation reports them.
func LoadManifest(path string) (batch *Batch, err error) {
	/* #nosec */
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	return ReadManifest(f, filepath.Dir(path))
}

func ReadManifest(r io.Reader, baseDir string) (batch *Batch, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if err != nil {
		err = fmt.Errorf("%w: missing header: %v", ErrInvalidManifest, err)
		return
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{columnLearnerId, columnFile} {
		if _, ok := columns[required]; !ok {
			err = fmt.Errorf("%w: missing column %s", ErrInvalidManifest, required)
			return
		}
	}

	cell := func(record []string, column string) string {
		i, ok := columns[column]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	batch = NewBatch()
	for {
		var record []string
		record, err = reader.Read()
		if errors.Is(err, io.EOF) {
			err = nil
			break
		}
		if err != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidManifest, err)
			return
		}

		line, _ := reader.FieldPos(0)

		var identifierType model.IdentifierType
		identifierType, err = model.ParseIdentifierType(cell(record, columnIdentifierType))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidManifest, line, err)
		}

		var file *model.CertificateFile
		if name := cell(record, columnFile); name != "" {
			if !filepath.IsAbs(name) {
				name = filepath.Join(baseDir, name)
			}
			file, err = model.LoadCertificateFile(name)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidManifest, line, err)
			}
		}

		var template *model.Template
		if id := cell(record, columnTemplateId); id != "" {
			template = &model.Template{Id: id}
		}

		batch.Add(cell(record, columnLearnerId), identifierType, file, template)
	}

	if batch.Len() == 0 {
		err = fmt.Errorf("%w: no entries", ErrInvalidManifest)
		return
	}
	return
}
