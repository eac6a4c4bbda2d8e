// Package report renders execution outcomes as shareable files.
//
// A Document is the storage-neutral shape of one report: a summary plus
// optional bulleted sections. Writer implementations persist a document as a
// pair of files, a machine-readable JSON dump and a human-readable Markdown
// summary, named by UTC timestamp. The FS writer targets a local or mounted
// share directory; callers that need object storage can implement Writer on
// top of their own client.
package report
