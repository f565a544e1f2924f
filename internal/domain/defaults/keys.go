package defaults

// Profile kinds.
const (
	KindJastrow     = "jastrow"
	KindOptSections = "opt_sections"
	KindVMCSections = "vmc_sections"
	KindDMCSections = "dmc_sections"
	KindSCF         = "scf"
	KindP2Q         = "p2q"
	KindOpt         = "opt"
	KindVMC         = "vmc"
	KindDMC         = "dmc"
	KindChain       = "chain"
	KindEcutScan    = "ecut_scan"
)

// Kinds lists every profile kind the engine reads.
var Kinds = []string{
	KindJastrow, KindOptSections, KindVMCSections, KindDMCSections,
	KindSCF, KindP2Q, KindOpt, KindVMC, KindDMC,
	KindChain, KindEcutScan,
}

// IsKind reports whether kind is read by the engine.
func IsKind(kind string) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Version is the profile name used when the caller selects none.
const Version = "v1"

// Workflow keys that carry a profile selection rather than a flag.
const (
	JastrowDefaultsKey  = "J_defaults"
	SectionsDefaultsKey = "sections_defaults"
)

// JastrowKeys are the options consumed by the correlation-factor builder.
var JastrowKeys = []string{
	"J1", "J2", "J3",
	"J1_size", "J1_rcut",
	"J2_size", "J2_rcut", "J2_init",
	"J3_isize", "J3_esize", "J3_rcut",
	"J1_rcut_open", "J2_rcut_open",
}

// OptSectionKeys are the options consumed by the optimization schedule builder.
var OptSectionKeys = []string{
	"method", "cost", "cycles", "var_cycles", "opt_calcs", "blocks",
	"warmupsteps", "stepsbetweensamples", "timestep", "samples",
	"minwalkers", "maxweight", "usedrift", "minmethod", "beta",
	"exp0", "bigchange", "alloweddifference", "stepsize",
	"stabilizerscale", "nstabilizers", "max_its", "cgsteps",
	"eigcg", "walkers", "nonlocalpp", "usebuffer", "gevmethod",
	"steps", "substeps", "stabilizermethod", "cswarmupsteps",
	"alpha_error", "gevsplit", "beta_error",
}

// OptMethodKeys are the section keys resolved against a method overlay.
var OptMethodKeys = OptSectionKeys[5:]

// VMCSectionKeys are the options consumed by the variational sampling builder.
var VMCSectionKeys = []string{
	"walkers", "warmupsteps", "blocks", "steps",
	"substeps", "timestep", "checkpoint",
	"J0_warmupsteps", "J0_blocks", "J0_steps",
	"test_warmupsteps", "test_blocks", "test_steps",
	"vmc_calcs",
}

// DMCSectionKeys are the options consumed by the diffusion sampling builder.
var DMCSectionKeys = []string{
	"walkers", "warmupsteps", "blocks", "steps",
	"timestep", "checkpoint",
	"vmc_samples", "vmc_samplesperthread",
	"vmc_walkers", "vmc_warmupsteps", "vmc_blocks", "vmc_steps",
	"vmc_substeps", "vmc_timestep", "vmc_checkpoint",
	"eq_dmc", "eq_warmupsteps", "eq_blocks", "eq_steps", "eq_timestep", "eq_checkpoint",
	"J0_warmupsteps", "J0_blocks", "J0_steps", "J0_checkpoint",
	"test_warmupsteps", "test_blocks", "test_steps",
	"ntimesteps", "timestep_factor",
	"dmc_calcs",
}

// DMCSectionRequired must be present for every diffusion schedule.
var DMCSectionRequired = []string{"nlmove"}

var levelFlags = []string{"J0_prod", "J2_prod", "J3_prod", "J0_test", "J2_test", "J3_test"}

// WorkflowKeys lists the required workflow keys per stage kind.
var WorkflowKeys = map[string][]string{
	KindSCF: {},
	KindP2Q: {},
	KindOpt: {"J2_prod", "J3_prod", JastrowDefaultsKey, SectionsDefaultsKey},
	KindVMC: append(append([]string{}, levelFlags...), SectionsDefaultsKey),
	KindDMC: append(append([]string{}, levelFlags...), "tmoves", "locality", SectionsDefaultsKey),
}

// StageKeys lists every stage kind handled by the chain, in build order.
var StageKeys = []string{KindSCF, KindP2Q, KindOpt, KindVMC, KindDMC}

// ChainKeys are the top-level options the chain accepts. The system, the
// stage repository and the base path travel outside the bag.
var ChainKeys = []string{
	"dft_pseudos", "qmc_pseudos",
	"scf", "p2q", "opt", "vmc", "dmc",
	"scf_inputs", "p2q_inputs", "opt_inputs", "vmc_inputs", "dmc_inputs",
	"scf_defaults", "p2q_defaults", "opt_defaults", "vmc_defaults", "dmc_defaults",
	"orb_source", "J2_source", "J3_source",
}
