// Package extract turns yoweb markup into typed records.
//
// Every parser is a pure function of the document text (plus whatever context
// the caller already knows, such as the URL it fetched). Extraction relies on
// layout heuristics rather than semantic markup: the 190px information panel,
// label text such as "of the crew", icon filenames and alt text. A field that
// cannot be located is left empty; a ParseError is only returned when a
// structurally required anchor is missing altogether.
package extract
