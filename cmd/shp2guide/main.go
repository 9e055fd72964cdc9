// Command shp2guide turns a shapefile of sights into the files of a guide
// directory: poi-base.json, a poi-<lang>.json skeleton, route.json and,
// when missing, languages.json.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"voiceguide/pkg/geo"
	"voiceguide/pkg/guide"
	"voiceguide/pkg/model"
)

type options struct {
	input     string
	outDir    string
	lang      string
	idField   string
	nameField string
	descField string
	geojson   string
}

func main() {
	var o options
	flag.StringVar(&o.input, "input", "", "Path to input .shp file (WGS84 lon/lat)")
	flag.StringVar(&o.outDir, "out", "", "Guide directory to write")
	flag.StringVar(&o.lang, "lang", "en", "Language of the text skeleton")
	flag.StringVar(&o.idField, "id-field", "ID", "Attribute holding the POI id")
	flag.StringVar(&o.nameField, "name-field", "NAME", "Attribute holding the POI name")
	flag.StringVar(&o.descField, "desc-field", "DESC", "Attribute holding the POI description")
	flag.StringVar(&o.geojson, "geojson", "", "Optional GeoJSON preview of the converted guide")
	flag.Parse()

	if o.input == "" || o.outDir == "" {
		flag.Usage()
		log.Fatal("Input and output paths are required")
	}

	if err := run(o); err != nil {
		log.Fatal(err)
	}
}

func run(o options) error {
	base, texts, err := readShapes(o)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(o.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create guide directory: %w", err)
	}

	g := guide.Merge(filepath.Base(o.outDir), o.lang, base, texts, nil)

	if err := writeJSON(filepath.Join(o.outDir, "poi-base.json"), guide.ExportBase(g)); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(o.outDir, fmt.Sprintf("poi-%s.json", o.lang)), texts); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(o.outDir, "route.json"), g.TourRoute); err != nil {
		return err
	}

	langPath := filepath.Join(o.outDir, "languages.json")
	if _, err := os.Stat(langPath); os.IsNotExist(err) {
		if err := writeJSON(langPath, map[string]string{o.lang: o.lang}); err != nil {
			return err
		}
	}

	if o.geojson != "" {
		data, err := guide.FeatureCollection(guide.MapState{Guide: g}).MarshalJSON()
		if err != nil {
			return fmt.Errorf("failed to marshal GeoJSON: %w", err)
		}
		if err := os.WriteFile(o.geojson, data, 0o644); err != nil {
			return fmt.Errorf("failed to write GeoJSON: %w", err)
		}
	}

	fmt.Printf("Successfully converted %d POIs to %s\n", len(g.POIs), o.outDir)
	return nil
}

func readShapes(o options) ([]model.BasePOI, []model.POIText, error) {
	shape, err := shp.Open(o.input)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open shapefile: %w", err)
	}
	defer shape.Close()

	idCol, nameCol, descCol := -1, -1, -1
	for i, f := range shape.Fields() {
		switch name := strings.TrimSpace(f.String()); {
		case strings.EqualFold(name, o.idField):
			idCol = i
		case strings.EqualFold(name, o.nameField):
			nameCol = i
		case strings.EqualFold(name, o.descField):
			descCol = i
		}
	}

	var (
		base  []model.BasePOI
		texts []model.POIText
	)
	for shape.Next() {
		n, p := shape.Shape()

		var pt orb.Point
		switch s := p.(type) {
		case *shp.Null:
			continue
		case *shp.Point:
			pt = orb.Point{s.X, s.Y}
		case *shp.PointZ:
			pt = orb.Point{s.X, s.Y}
		case *shp.PolyLine:
			pt = convertPolyLine(s).Bound().Center()
		case *shp.Polygon:
			pt = convertPolygon(s).Bound().Center()
		default:
			slog.Warn("Skipping unsupported shape type", "type", fmt.Sprintf("%T", p))
			continue
		}

		attr := func(col int) string {
			if col < 0 {
				return ""
			}
			return strings.TrimSpace(shape.ReadAttribute(n, col))
		}
		id := attr(idCol)
		if id == "" {
			id = fmt.Sprintf("poi-%d", n+1)
		}

		c := geo.FromOrb(pt)
		base = append(base, model.BasePOI{ID: id, Lat: c.Lat, Lon: c.Lon})
		texts = append(texts, model.POIText{ID: id, Name: attr(nameCol), Description: attr(descCol)})
	}
	if err := shape.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating shapes: %w", err)
	}
	return base, texts, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func convertPolyLine(s *shp.PolyLine) orb.MultiLineString {
	var multiline orb.MultiLineString

	for i := 0; i < int(s.NumParts); i++ {
		start := s.Parts[i]
		end := s.NumPoints
		if i < int(s.NumParts)-1 {
			end = s.Parts[i+1]
		}

		var line orb.LineString
		for j := start; j < end; j++ {
			line = append(line, orb.Point{s.Points[j].X, s.Points[j].Y})
		}
		multiline = append(multiline, line)
	}
	return multiline
}

func convertPolygon(s *shp.Polygon) orb.Polygon {
	var poly orb.Polygon

	for i := 0; i < int(s.NumParts); i++ {
		start := s.Parts[i]
		end := s.NumPoints
		if i < int(s.NumParts)-1 {
			end = s.Parts[i+1]
		}

		var ring orb.Ring
		for j := start; j < end; j++ {
			ring = append(ring, orb.Point{s.Points[j].X, s.Points[j].Y})
		}
		poly = append(poly, ring)
	}
	return poly
}
