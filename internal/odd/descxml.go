package odd

import "encoding/xml"

// isoDocument models the fixed subset of an ISO-19115 gmd:MD_Metadata
// document this parser reads. Namespace prefixes are ignored by
// encoding/xml's local-name matching.
type isoDocument struct {
	XMLName       xml.Name `xml:"MD_Metadata"`
	DateStamp     string   `xml:"dateStamp>Date"`
	Identification struct {
		Abstract string `xml:"abstract>CharacterString"`
		Citation struct {
			Title string    `xml:"CI_Citation>title>CharacterString"`
			Dates []ciDate  `xml:"CI_Citation>date>CI_Date"`
		} `xml:"citation"`
		Extent struct {
			Geographic struct {
				WestBound  float64 `xml:"EX_GeographicBoundingBox>westBoundLongitude>Decimal"`
				EastBound  float64 `xml:"EX_GeographicBoundingBox>eastBoundLongitude>Decimal"`
				SouthBound float64 `xml:"EX_GeographicBoundingBox>southBoundLatitude>Decimal"`
				NorthBound float64 `xml:"EX_GeographicBoundingBox>northBoundLatitude>Decimal"`
			} `xml:"EX_Extent>geographicElement"`
			Temporal struct {
				BeginPosition string `xml:"EX_TemporalExtent>extent>TimePeriod>beginPosition"`
				EndPosition   string `xml:"EX_TemporalExtent>extent>TimePeriod>endPosition"`
			} `xml:"EX_Extent>temporalElement"`
		} `xml:"extent"`
		ResourceFormat struct {
			Name string `xml:"MD_Format>name>CharacterString"`
		} `xml:"resourceFormat"`
		ResourceConstraints []struct {
			UseLimitation string `xml:"MD_LegalConstraints>useLimitation>CharacterString"`
		} `xml:"resourceConstraints"`
	} `xml:"identificationInfo>MD_DataIdentification"`
}

type ciDate struct {
	Date     string `xml:"date>Date"`
	DateType struct {
		Code string `xml:"CI_DateTypeCode"`
	} `xml:"dateType"`
}

// DescxmlFields is the harmonised result of parsing an ISO-19115 descxml
// document. Every field is the empty value when absent or
// the document fails to parse.
type DescxmlFields struct {
	Abstract         string
	Title            string
	Licences         []string
	BBoxMinX         float64
	BBoxMinY         float64
	BBoxMaxX         float64
	BBoxMaxY         float64
	HasBBox          bool
	TemporalStart    string
	TemporalEnd      string
	FileFormats      []string
	CreationDate     string
	PublicationDate  string
}

// fixedFormatCheck is the format name the document must advertise for
// ParseDescxml to report ".nc" as the sole file format, mirroring the
// original's conditional "fixed-value check" extraction.
const fixedFormatCheck = "NetCDF"

// ParseDescxml extracts the descxml fields. Malformed XML yields a
// zero-value DescxmlFields rather than an error.
func ParseDescxml(data []byte) DescxmlFields {
	var doc isoDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return DescxmlFields{}
	}

	id := doc.Identification
	fields := DescxmlFields{
		Abstract:      id.Abstract,
		Title:         id.Citation.Title,
		TemporalStart: id.Extent.Temporal.BeginPosition,
		TemporalEnd:   id.Extent.Temporal.EndPosition,
	}

	geo := id.Extent.Geographic
	if geo.WestBound != 0 || geo.EastBound != 0 || geo.SouthBound != 0 || geo.NorthBound != 0 {
		fields.HasBBox = true
		fields.BBoxMinX = geo.WestBound
		fields.BBoxMinY = geo.SouthBound
		fields.BBoxMaxX = geo.EastBound
		fields.BBoxMaxY = geo.NorthBound
	}

	for _, c := range id.ResourceConstraints {
		if c.UseLimitation != "" {
			fields.Licences = append(fields.Licences, c.UseLimitation)
		}
	}

	if id.ResourceFormat.Name == fixedFormatCheck {
		fields.FileFormats = []string{".nc"}
	}

	for _, d := range id.Citation.Dates {
		switch d.DateType.Code {
		case "creation":
			fields.CreationDate = d.Date
		case "publication":
			fields.PublicationDate = d.Date
		}
	}

	return fields
}
