package domain

import "net/netip"

// Deployment is the fully resolved configuration for one single-host web
// stack. It is constructed once by the resolver, is immutable afterwards,
// and is not persisted by this tool.
type Deployment struct {
	EnvironmentPrefix string
	NetworkCIDR       netip.Prefix
	SubnetCIDR        netip.Prefix
	AvailabilityZone  string
	AdminSourceIP     netip.Prefix
	InstanceSize      string
	PublicKeyPath     string

	// PublicKey holds the authorized-key line read from PublicKeyPath.
	PublicKey string
}

// ResourceNames are the deterministic names derived from the environment
// prefix. Uniqueness across deployments sharing a prefix is the caller's
// responsibility.
type ResourceNames struct {
	VPC             string
	Subnet          string
	RouteTable      string
	InternetGateway string
	SecurityGroup   string
	Instance        string
	KeyPair         string
}

func (d Deployment) Names() ResourceNames {
	p := d.EnvironmentPrefix
	return ResourceNames{
		VPC:             p + "-vpc",
		Subnet:          p + "-subnet",
		RouteTable:      p + "-rt",
		InternetGateway: p + "-igw",
		SecurityGroup:   p + "-web-sg",
		Instance:        p + "-web",
		KeyPair:         p + "-key",
	}
}

// ContainerName is the fixed name the web container runs under on the
// host. The convergence replace policy keys off this name.
func (d Deployment) ContainerName() string {
	return d.EnvironmentPrefix + "-web"
}

// Region derives the region from the availability zone by stripping the
// trailing zone letter, e.g. "us-east-1a" -> "us-east-1".
func (d Deployment) Region() string {
	z := d.AvailabilityZone
	if len(z) > 1 {
		last := z[len(z)-1]
		if last >= 'a' && last <= 'z' {
			return z[:len(z)-1]
		}
	}
	return z
}
