package types

// GitHub specific constants shared across the auth, clone and publish layers.
const (
	// DefaultHost is the hosting domain assumed when a repository does not
	// carry an explicit host
	DefaultHost = "github.com"

	// DefaultReference is the ref checked out when the caller does not name one
	DefaultReference = "refs/heads/master"

	// APIBaseURL is the REST API endpoint for the public hosting domain
	APIBaseURL = "https://api.github.com"

	// InstallationUser is the sentinel auth username marking GitHub App
	// installation mode. In that mode the auth password field holds the
	// numeric installation id, not a credential.
	InstallationUser = "installation"

	// TokenUser is the username GitHub expects alongside an access token when
	// credentials are embedded in a clone URL
	TokenUser = "x-access-token"

	// UserAgent identifies this tool on every outbound API call
	UserAgent = "houston"

	// WorkBranch is the local branch created to point at the requested
	// reference during clone
	WorkBranch = "houston"

	// Label applied to issues opened for failed releases
	LabelName        = "AppCenter"
	LabelColor       = "4c158a"
	LabelDescription = "Issues opened by the AppCenter release pipeline"

	// SniffSize bounds how much of an asset is read for content type
	// detection. Large enough for every supported signature, small enough to
	// keep huge artifacts cheap to probe.
	SniffSize = 4100

	// AcceptMachineManPreview is required by the installation token endpoint
	AcceptMachineManPreview = "application/vnd.github.machine-man-preview+json"

	// AcceptV3 is the stable REST media type used for asset uploads
	AcceptV3 = "application/vnd.github.v3+json"
)
