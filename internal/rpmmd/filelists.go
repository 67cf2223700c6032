package rpmmd

import (
	"bytes"
	"compress/bzip2"
	"database/sql"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

type filelistsDoc struct {
	XMLName  xml.Name           `xml:"filelists"`
	Packages []filelistsPackage `xml:"package"`
}

type filelistsPackage struct {
	Name  string   `xml:"name,attr"`
	Arch  string   `xml:"arch,attr"`
	Files []string `xml:"file"`
}

// fileEntry is one package's list of absolute installed file paths.
type fileEntry struct {
	Name  string
	Arch  string
	Files []string
}

// parseFilelists decodes filelists metadata in any of its encodings: plain
// or compressed XML, or a SQLite database (filelists_db), possibly
// bzip2-compressed.
func parseFilelists(location string, raw []byte) ([]fileEntry, error) {
	if strings.Contains(location, ".sqlite") {
		return parseFilelistsDB(location, raw)
	}
	data, err := decodePayload(location, raw)
	if err != nil {
		return nil, err
	}
	var doc filelistsDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing filelists metadata: %w", err)
	}
	var out []fileEntry
	for _, pkg := range doc.Packages {
		name := strings.TrimSpace(pkg.Name)
		if name == "" {
			continue
		}
		var files []string
		for _, f := range pkg.Files {
			f = strings.TrimSpace(f)
			if strings.HasPrefix(f, "/") {
				files = append(files, f)
			}
		}
		out = append(out, fileEntry{Name: name, Arch: strings.TrimSpace(pkg.Arch), Files: files})
	}
	return out, nil
}

// parseFilelistsDB reads the SQLite encoding. The payload lands in a private
// temp file (the driver needs a file), which is removed no matter how
// parsing goes. Two schema variants exist in the wild for the file table:
// (dirname, filename) pairs joined on pkgKey, or a single full-path column.
func parseFilelistsDB(location string, raw []byte) ([]fileEntry, error) {
	data := raw
	if strings.HasSuffix(location, ".bz2") {
		if d, err := io.ReadAll(bzip2.NewReader(bytes.NewReader(raw))); err == nil {
			data = d
		}
		// else: some servers serve raw sqlite under a .bz2 name
	}

	tmp, err := os.CreateTemp("", "filelists-*.sqlite")
	if err != nil {
		return nil, fmt.Errorf("creating temp sqlite file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("writing temp sqlite file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("opening filelists db: %w", err)
	}
	defer db.Close()

	tables, err := tableNames(db)
	if err != nil {
		return nil, err
	}
	filesTbl := ""
	switch {
	case tables["files"]:
		filesTbl = "files"
	case tables["filelist"]:
		filesTbl = "filelist"
	}
	if filesTbl == "" || !tables["packages"] {
		return nil, fmt.Errorf("unknown filelists db schema in %s", location)
	}

	var query string
	if hasColumn(db, filesTbl, "dirname") && hasColumn(db, filesTbl, "filename") {
		query = fmt.Sprintf(`
			SELECT p.name, p.arch,
			       CASE WHEN f.dirname='/' THEN '/'||f.filename ELSE f.dirname||'/'||f.filename END
			FROM packages AS p
			JOIN %s AS f ON p.pkgKey = f.pkgKey`, filesTbl)
	} else {
		// single full-path column named 'name'
		query = fmt.Sprintf(`
			SELECT p.name, p.arch, f.name
			FROM packages AS p
			JOIN %s AS f ON p.pkgKey = f.pkgKey`, filesTbl)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying filelists db: %w", err)
	}
	defer rows.Close()

	grouped := make(map[pkgKey]map[string]struct{})
	for rows.Next() {
		var name, arch, path sql.NullString
		if err := rows.Scan(&name, &arch, &path); err != nil {
			return nil, fmt.Errorf("scanning filelists row: %w", err)
		}
		p := strings.TrimSpace(path.String)
		if !strings.HasPrefix(p, "/") {
			continue
		}
		key := pkgKey{name.String, arch.String}
		if grouped[key] == nil {
			grouped[key] = make(map[string]struct{})
		}
		grouped[key][p] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading filelists rows: %w", err)
	}

	out := make([]fileEntry, 0, len(grouped))
	for key, paths := range grouped {
		files := make([]string, 0, len(paths))
		for p := range paths {
			files = append(files, p)
		}
		sort.Strings(files)
		out = append(out, fileEntry{Name: key.name, Arch: key.arch, Files: files})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Arch < out[j].Arch
	})
	return out, nil
}

func tableNames(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table'`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[name] = true
	}
	return out, rows.Err()
}

func hasColumn(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notnull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &defaultVal, &pk); err != nil {
			return false
		}
		if name == column {
			return true
		}
	}
	return false
}

// augmentWithFilelists registers every absolute file path as a synthetic
// provide of its owning package, matched by (name, arch) with a fall-back
// to the first same-name entry on an arch miss.
func augmentWithFilelists(idx *RepoIndex, entries []fileEntry) {
	for _, e := range entries {
		owner := idx.FindPackage(e.Name, e.Arch)
		if owner == nil {
			continue
		}
		for _, path := range e.Files {
			idx.AddFileProvide(path, owner)
		}
	}
}
