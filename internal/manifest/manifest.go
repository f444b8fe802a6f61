package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/desertthunder/spdl/internal/models"
	"github.com/desertthunder/spdl/internal/shared"
)

// Entry is one playlist kept in sync.
type Entry struct {
	Name             string // display name, optional
	Link             string
	DownloadLocation string
	CreateFolder     bool
	Convention       models.Convention // effective naming convention
}

// Manifest is the ordered list of playlists to sync.
type Manifest struct {
	DefaultConvention models.Convention
	Entries           []Entry
}

// New returns an empty manifest using convention c.
func New(c models.Convention) *Manifest {
	if !c.Valid() {
		c = models.DefaultConvention
	}
	return &Manifest{DefaultConvention: c}
}

// Add appends e, giving it the manifest's default convention when it has none.
func (m *Manifest) Add(e Entry) {
	if !e.Convention.Valid() {
		e.Convention = m.DefaultConvention
	}
	m.Entries = append(m.Entries, e)
}

// Len returns the number of playlist entries.
func (m *Manifest) Len() int { return len(m.Entries) }

// Validate checks that every entry can be synced.
func (m *Manifest) Validate() error {
	if !m.DefaultConvention.Valid() {
		return fmt.Errorf("%w: unknown default convention %d", shared.ErrManifestFormat, m.DefaultConvention)
	}
	for i, e := range m.Entries {
		if e.Link == "" {
			return fmt.Errorf("%w: entry %d has no link", shared.ErrManifestFormat, i+1)
		}
		if !e.Convention.Valid() {
			return fmt.Errorf("%w: entry %d has unknown convention %d", shared.ErrManifestFormat, i+1, e.Convention)
		}
	}
	return nil
}

// record is the union of the two element shapes of the on-disk array.
type record struct {
	ConventionCode      *int    `json:"convention_code,omitempty"`
	TracknameConvention string  `json:"trackname_convention,omitempty"`
	Name                string  `json:"name,omitempty"`
	Link                *string `json:"link,omitempty"`
	CreateFolder        *bool   `json:"create_folder,omitempty"`
	DownloadLocation    *string `json:"download_location,omitempty"`
}

// Load reads the manifest at path.
//
// It returns [shared.ErrManifestNotFound] when path does not exist and [shared.ErrManifestFormat] when the content
// is not an array of entry and convention records.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", shared.ErrManifestNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes manifest JSON.
func Parse(data []byte) (*Manifest, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrManifestFormat, err)
	}

	m := New(models.DefaultConvention)
	current := models.DefaultConvention
	seen := false
	for i, msg := range raw {
		var rec record
		if err := json.Unmarshal(msg, &rec); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", shared.ErrManifestFormat, i+1, err)
		}

		switch {
		case rec.ConventionCode != nil:
			c, err := models.ParseConvention(*rec.ConventionCode)
			if err != nil {
				return nil, fmt.Errorf("%w: record %d: %v", shared.ErrManifestFormat, i+1, err)
			}
			current = c
			if !seen {
				m.DefaultConvention = c
				seen = true
			}
		case rec.Link != nil:
			if *rec.Link == "" {
				return nil, fmt.Errorf("%w: record %d has an empty link", shared.ErrManifestFormat, i+1)
			}
			e := Entry{Name: rec.Name, Link: *rec.Link, Convention: current}
			if rec.DownloadLocation != nil {
				e.DownloadLocation = *rec.DownloadLocation
			}
			if rec.CreateFolder != nil {
				e.CreateFolder = *rec.CreateFolder
			}
			m.Entries = append(m.Entries, e)
		default:
			return nil, fmt.Errorf("%w: record %d is neither a playlist nor a convention setting", shared.ErrManifestFormat, i+1)
		}
	}
	return m, nil
}

// Marshal encodes m in the on-disk format.
func Marshal(m *Manifest) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	records := make([]record, 0, len(m.Entries)+1)
	records = append(records, conventionRecord(m.DefaultConvention))
	current := m.DefaultConvention
	for _, e := range m.Entries {
		if e.Convention != current {
			records = append(records, conventionRecord(e.Convention))
			current = e.Convention
		}
		link, loc, folder := e.Link, e.DownloadLocation, e.CreateFolder
		records = append(records, record{
			Name:             e.Name,
			Link:             &link,
			CreateFolder:     &folder,
			DownloadLocation: &loc,
		})
	}
	return json.MarshalIndent(records, "", "  ")
}

func conventionRecord(c models.Convention) record {
	code := c.Code()
	return record{ConventionCode: &code, TracknameConvention: c.Label()}
}

// Save writes m to path atomically.
func Save(path string, m *Manifest) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}

	w, err := NewAtomicWriter(path)
	if err != nil {
		return fmt.Errorf("failed to save manifest: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		_ = w.Abort()
		return fmt.Errorf("failed to save manifest: %w", err)
	}
	if err := w.Commit(); err != nil {
		return fmt.Errorf("failed to save manifest: %w", err)
	}
	return nil
}
