package git

var StripMetadata = stripMetadata
