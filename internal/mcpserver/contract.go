package mcpserver

// SongFormatContract describes the Markdown layout of a catalog song file.
// LLM consumers read it before interpreting get_song output or drafting
// new songs for the content directory.
const SongFormatContract = `# RotomSongs Song Format

Every song is one Markdown file directly inside the content directory.

## File name

` + "`" + `YYYYMMDD_HHMM.md` + "`" + `, e.g. ` + "`" + `20250615_1729.md` + "`" + `. The stem is the song id and
must equal the ` + "`" + `id` + "`" + ` frontmatter field. Newer ids sort first.

## Structure

` + "```" + `markdown
---
title: "オーバタ"                     # REQUIRED, non-blank for catalog songs
id: "20230209_1519"                   # REQUIRED, same as the file name stem
created: 2023-02-09                   # REQUIRED, date or datetime
updated: 2025-06-17T15:32:00          # REQUIRED, date or datetime
tags:                                 # OPTIONAL, YAML list
  - RotomSongs                        # only tagged files are published
---

### Source
![](https://x.com/<account>/status/<post-id>)

### Lyrics
Parody lyrics, one line per sung line.

Blank lines separate verses.

### Original
#### Artist
Original artist

#### Title
Original title

#### Lyrics
Original lyrics

### Reference
- [[20230101_0000]]
` + "```" + `

## Rules

1. **Frontmatter** is YAML between ` + "`" + `---` + "`" + ` fences at the top of the file. TOML between
   ` + "`" + `+++` + "`" + ` fences is also accepted.
2. **Inclusion tag.** A file without the ` + "`" + `RotomSongs` + "`" + ` tag is a draft and never served.
3. **Sections** are level-3 headings in the order Source, Lyrics, Original, Reference.
   Any other ` + "`" + `### ` + "`" + ` heading ends the previous section and is ignored.
4. **Original** holds level-4 sub-sections Artist, Title and Lyrics. Artist and Title are
   single paragraphs; Lyrics keeps blank lines.
5. **References** are ` + "`" + `[[id]]` + "`" + ` links to other songs. Unknown ids are dropped when
   the song is served.
6. **Encoding** is UTF-8. CRLF line endings are accepted.
`

// SongFormatURI is the resource URI of SongFormatContract.
const SongFormatURI = "rotomsongs://song-format"
