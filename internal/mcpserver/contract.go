package mcpserver

// ExampleDocument is a complete, valid corpus document.
const ExampleDocument = `+++
title = "Graphs all the way down"
id = "graphs"
author = "Ada"
description = "Why every post links somewhere."
date = 2024-03-01
tag = "essay"
image = "/assets/graphs.png"
icon = "/assets/icons/essay.svg"
draft = false
+++
Posts become nodes. A link such as [the first post](/hello_world) becomes an
edge from this document to the node with id ` + "`hello_world`" + `.
`

// DocumentFormatContract describes the document format that LLM consumers
// should follow when reading or writing corpus files.
const DocumentFormatContract = `# graphblog Document Format

Every document in the corpus is a UTF-8 text file with a TOML metadata block
fenced by ` + "`+++`" + ` lines, followed by a Markdown body.

## Metadata

All nine keys are required. A file with a missing key, a value of the wrong
type, or no metadata block is left out of the graph and cannot be rendered.
Neither metadata values nor the body may contain ` + "`+++`" + `: it would end
the block early. A repeated id keeps the first document's node; the later
document's links still count.

| key         | type       | meaning                                      |
|-------------|------------|----------------------------------------------|
| title       | string     | page title and graph label                   |
| id          | string     | graph node id, non-empty, unique             |
| author      | string     | author meta tag                              |
| description | string     | description and social card text             |
| date        | date       | bare TOML date, YYYY-MM-DD                   |
| tag         | string     | graph node tag                               |
| image       | string     | social card image URL                        |
| icon        | string     | graph node icon URL                          |
| draft       | bool       | drafts can be hidden from the graph          |

## Links

1. Only inline links (` + "`[text](/target)`" + `) whose destination starts with a
   single ` + "`/`" + ` become graph edges. The target is the destination without
   the leading slash and should equal the id of another document.
2. Reference-style links, autolinks, images, absolute URLs and
   protocol-relative URLs (` + "`//host/...`" + `) never become edges.
3. A bare ` + "`/`" + ` destination is malformed: skipped by default, rejected when
   strict links are enabled.

## Paths

A document's slug is its path under the corpus root without the file
extension: ` + "`notes/hello_world.md`" + ` is served at ` + "`/notes/hello_world`" + `.
In the front page index, underscores in slugs display as spaces.

## Example

` + "```" + `markdown
` + ExampleDocument + "```" + `
`
