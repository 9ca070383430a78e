package feeds

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// XMLFeed reads the hobby export, a <users> document of <user> elements
// carrying email, name and a list of hobby names without priorities.
type XMLFeed struct {
	path   string
	logger ectologger.Logger
}

func NewXMLFeed(path string, logger ectologger.Logger) *XMLFeed {
	return &XMLFeed{
		path:   path,
		logger: logger,
	}
}

func (f *XMLFeed) Source() models.Source {
	return models.SourceXML
}

type xmlUsersDocument struct {
	XMLName xml.Name      `xml:"users"`
	Users   []xmlUserNode `xml:"user"`
}

type xmlUserNode struct {
	Email   string   `xml:"email"`
	Name    string   `xml:"name"`
	Hobbies []string `xml:"hobbies>hobby"`
}

func (f *XMLFeed) Read(ctx context.Context) ([]models.RawPersonRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "feeds.XMLFeed.Read")
	defer span.End()

	file, err := os.Open(f.path)
	if err != nil {
		f.logger.WithContext(ctx).WithError(err).WithField("path", f.path).Error("Failed to open xml file")
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "failed to open xml file: %v", err)
	}
	defer file.Close()

	records, err := decodeXMLUsers(file)
	if err != nil {
		f.logger.WithContext(ctx).WithError(err).WithField("path", f.path).Error("Failed to decode xml file")
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "failed to decode xml file: %v", err)
	}

	f.logger.WithContext(ctx).WithField("records", len(records)).Info("Read xml feed")
	return records, nil
}

func decodeXMLUsers(r io.Reader) ([]models.RawPersonRecord, error) {
	var doc xmlUsersDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}

	var records []models.RawPersonRecord
	for _, node := range doc.Users {
		var hobbies []string
		for _, h := range node.Hobbies {
			h = strings.TrimSpace(h)
			if h != "" {
				hobbies = append(hobbies, h)
			}
		}
		records = append(records, models.RawPersonRecord{
			Source:  models.SourceXML,
			Email:   strings.TrimSpace(node.Email),
			Name:    strings.TrimSpace(node.Name),
			Hobbies: hobbies,
		})
	}
	return records, nil
}
