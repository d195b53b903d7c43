package workflow

import (
	"context"
	"strings"

	"github.com/skillchain/issuer/src/utils/backend"
	"github.com/skillchain/issuer/src/utils/logger"
	"github.com/skillchain/issuer/src/utils/model"
	"github.com/skillchain/issuer/src/utils/monitoring"
	monitor_issuer "github.com/skillchain/issuer/src/utils/monitoring/issuer"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
)

// Reads certificate fields through the OCR endpoint
type Extractor struct {
	backend Backend
	monitor monitoring.Monitor
	log     *logrus.Entry
}

func NewExtractor(client Backend) (self *Extractor) {
	self = new(Extractor)
	self.backend = client
	self.monitor = monitor_issuer.NewMonitor()
	self.log = logger.NewSublogger("extractor")
	return
}

func (self *Extractor) WithMonitor(monitor monitoring.Monitor) *Extractor {
	self.monitor = monitor
	return self
}

// Uploads the file and returns the extracted fields. Fields missing in the response keep their previous values.
func (self *Extractor) Extract(ctx context.Context, credentials backend.Credentials, file *model.CertificateFile, previous model.Details) (out *model.ExtractedFields, err error) {
	if file == nil {
		err = ValidationErrors{{Field: "certificate_file", Message: "Upload a certificate first"}}
		return
	}

	resp, err := self.backend.ExtractOCR(ctx, credentials, file)
	if err != nil {
		self.monitor.GetReport().Issuer.Errors.OcrExtraction.Inc()
		self.log.WithError(err).WithField("file", file.Name).Warn("Extraction failed")
		return
	}

	fields, err := decodeFields(resp.Fields())
	if err != nil {
		self.monitor.GetReport().Issuer.Errors.OcrExtraction.Inc()
		return
	}

	merged := fields.MergedWith(previous)
	self.monitor.GetReport().Verifier.State.OcrExtractions.Inc()
	self.log.WithField("file", file.Name).WithField("learner_name", merged.LearnerName).Debug("Fields extracted")
	return &merged, nil
}

func decodeFields(raw map[string]interface{}) (out model.ExtractedFields, err error) {
	if raw == nil {
		return
	}

	// Alternative names returned by older OCR versions
	aliases := map[string]string{
		"issuer_name":      "issuer",
		"name":             "learner_name",
		"certificate_name": "title",
		"level":            "nsqf_level",
	}
	for from, to := range aliases {
		if v, ok := raw[from]; ok {
			if _, exists := raw[to]; !exists {
				raw[to] = v
			}
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return
	}

	err = decoder.Decode(raw)
	if err != nil {
		return
	}

	out.Skills = cleanList(out.Skills)
	out.Tags = cleanList(out.Tags)
	return
}

func cleanList(in []string) (out []string) {
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return
}
