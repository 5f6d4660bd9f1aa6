package faturas

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/siqueira-ec/equatorial-utils-cli/equatorial"
	"github.com/siqueira-ec/equatorial-utils-cli/state"
	"github.com/sirupsen/logrus"
)

// DefaultFilePrefix is joined with the contract number to name saved PDFs.
const DefaultFilePrefix = "fatura_equatorial"

// PdfFetcher resolves the PDF payload of an invoice.
type PdfFetcher interface {
	FetchInvoicePdf(ctx context.Context, invoiceNumber string, token equatorial.Token) (equatorial.PdfPayload, error)
}

// Uploader mirrors a written file somewhere else.
type Uploader interface {
	Upload(ctx context.Context, objectName, path string) error
}

// Recorder keeps track of written files.
type Recorder interface {
	Record(f state.SavedFile)
}

type Saver struct {
	Fetcher    PdfFetcher
	OutDir     string
	FilePrefix string
	DryRun     bool
	Uploader   Uploader
	Recorder   Recorder
	Logger     logrus.FieldLogger
}

func NewSaver(fetcher PdfFetcher, outDir string) *Saver {
	return &Saver{
		Fetcher:    fetcher,
		OutDir:     outDir,
		FilePrefix: DefaultFilePrefix,
		Logger:     logrus.StandardLogger(),
	}
}

// FileNameBase is the per-contract file name base under the output dir.
func (s *Saver) FileNameBase(contract string) string {
	prefix := s.FilePrefix
	if prefix == "" {
		prefix = DefaultFilePrefix
	}
	return filepath.Join(s.OutDir, fmt.Sprintf("%s_%s", prefix, contract))
}

// SaveOpenInvoices fetches and writes the PDF of every invoice in set,
// contract by contract. The first failure stops the batch; files written
// before it stay on disk and in the recorder.
func (s *Saver) SaveOpenInvoices(ctx context.Context, set equatorial.InvoiceSet, token equatorial.Token) error {
	log := s.logger()

	for _, entry := range set {
		switch outcome := entry.Outcome.(type) {
		case equatorial.Empty:
			log.WithField("contract", entry.Contract).Info(string(outcome))
		case equatorial.Invoices:
			if len(outcome) == 0 {
				log.WithField("contract", entry.Contract).Info(equatorial.NoOpenInvoices)
				continue
			}
			for _, invoice := range outcome {
				if err := s.saveInvoice(ctx, entry.Contract, invoice, token); err != nil {
					return fmt.Errorf("saving invoice %s of contract %s: %w", invoice.Number, entry.Contract, err)
				}
			}
		default:
			return fmt.Errorf("contract %s: unexpected invoice outcome %T", entry.Contract, entry.Outcome)
		}
	}
	return nil
}

func (s *Saver) saveInvoice(ctx context.Context, contract string, invoice equatorial.Invoice, token equatorial.Token) error {
	log := s.logger().WithFields(logrus.Fields{
		"contract": contract,
		"invoice":  invoice.Number,
		"period":   invoice.Period,
	})
	base := s.FileNameBase(contract)

	if s.DryRun {
		name, err := FileName(base, invoice.Period)
		if err != nil {
			return err
		}
		log.Infof("[Dry Run] Would save invoice to %s", name)
		return nil
	}

	payload, err := s.Fetcher.FetchInvoicePdf(ctx, invoice.Number, token)
	if err != nil {
		return err
	}

	path, err := SavePdf(payload, invoice.Period, base)
	if err != nil {
		return err
	}
	log.Infof("Fatura salva em %s", path)

	if s.Recorder != nil {
		s.Recorder.Record(state.SavedFile{
			Contract: contract,
			Invoice:  invoice.Number,
			Period:   invoice.Period,
			Path:     path,
		})
	}

	if s.Uploader != nil {
		if err := s.Uploader.Upload(ctx, filepath.Base(path), path); err != nil {
			return fmt.Errorf("uploading %s: %w", path, err)
		}
		log.Debugf("Uploaded %s", filepath.Base(path))
	}
	return nil
}

func (s *Saver) logger() logrus.FieldLogger {
	if s.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.Logger
}
