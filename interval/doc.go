/*Package interval implements loading, validation, and conversion of genomic
  interval files.  It understands two plain-text formats: BED (0-based,
  half-open coordinates) and the SAM-header-prefixed interval_list format
  (1-based, closed coordinates).  Records are validated against a sequence
  dictionary represented as a sam.Header, and a bounded rewindable reader
  makes format auto-detection work on pipes and stdin as well as regular
  files.
*/
package interval
