package game

import "fmt"

type Pool string

const (
	PoolBeverage Pool = "beverage"
	PoolFood     Pool = "food"
)

type ItemID string

const (
	ItemCrispBlanco  ItemID = "crisp_blanco"
	ItemHouseWhite   ItemID = "house_white"
	ItemTableRed     ItemID = "table_red"
	ItemRiesling     ItemID = "mineral_riesling"
	ItemMerlot       ItemID = "midrange_merlot"
	ItemRioja        ItemID = "rioja_reserva"
	ItemOrangeWine   ItemID = "orange_skin_contact"
	ItemMargaux      ItemID = "chateau_margaux"
	ItemPubChips     ItemID = "pub_chips"
	ItemNachos       ItemID = "loaded_nachos"
	ItemFishAndChips ItemID = "fish_and_chips"
	ItemSundayRoast  ItemID = "sunday_roast"
	ItemSteakPie     ItemID = "steak_pie"
	ItemVeggieCurry  ItemID = "veggie_curry"
	ItemTruffleMac   ItemID = "truffle_mac"
	ItemLambPlate    ItemID = "charred_lamb_plate"
)

type itemDef struct {
	ID              ItemID
	Name            string
	Pool            Pool
	UnitCostPence   int64
	SellPricePence  int64
	ShelfLifeDays   int
	DemandWeightBps int64
}

var itemCatalog = []itemDef{
	{ItemCrispBlanco, "Crisp & Fruity Blanco", PoolBeverage, 90, 300, 2, 13_000},
	{ItemHouseWhite, "House White", PoolBeverage, 300, 700, 3, 12_500},
	{ItemTableRed, "Cheap Table Red", PoolBeverage, 500, 1_100, 3, 12_000},
	{ItemRiesling, "Mineral Riesling", PoolBeverage, 480, 1_100, 4, 10_500},
	{ItemMerlot, "Mid-range Merlot", PoolBeverage, 700, 1_800, 5, 9_500},
	{ItemRioja, "Rioja Reserva", PoolBeverage, 850, 2_100, 5, 9_500},
	{ItemOrangeWine, "Orange Skin-Contact", PoolBeverage, 950, 2_400, 4, 9_000},
	{ItemMargaux, "Chateau Margaux", PoolBeverage, 4_500, 12_000, 7, 6_500},
	{ItemPubChips, "Pub Chips", PoolFood, 150, 450, 2, 12_500},
	{ItemNachos, "Loaded Nachos", PoolFood, 210, 650, 2, 12_000},
	{ItemFishAndChips, "Fish & Chips", PoolFood, 350, 950, 3, 9_500},
	{ItemSundayRoast, "Sunday Roast", PoolFood, 400, 1_200, 3, 9_000},
	{ItemSteakPie, "Steak Pie", PoolFood, 450, 1_300, 3, 9_000},
	{ItemVeggieCurry, "Veggie Curry", PoolFood, 320, 1_000, 3, 9_500},
	{ItemTruffleMac, "Truffle Mac", PoolFood, 580, 1_600, 4, 7_000},
	{ItemLambPlate, "Charred Lamb Plate", PoolFood, 720, 1_950, 4, 6_500},
}

func itemByID(id ItemID) (itemDef, error) {
	for _, it := range itemCatalog {
		if it.ID == id {
			return it, nil
		}
	}
	return itemDef{}, fmt.Errorf("%w: item %q", ErrNotFound, id)
}

// Items lists the catalog ids of one pool in catalog order.
func Items(pool Pool) []ItemID {
	out := make([]ItemID, 0, len(itemCatalog))
	for _, it := range itemCatalog {
		if it.Pool == pool {
			out = append(out, it.ID)
		}
	}
	return out
}

type StaffPool string

const (
	PoolFrontOfHouse StaffPool = "front_of_house"
	PoolBackOfHouse  StaffPool = "back_of_house"
	PoolManagers     StaffPool = "managers"
)

type StaffType string

const (
	StaffTrainee          StaffType = "trainee"
	StaffExperienced      StaffType = "experienced"
	StaffSpeed            StaffType = "speed"
	StaffCharisma         StaffType = "charisma"
	StaffSecurity         StaffType = "security"
	StaffAssistantManager StaffType = "assistant_manager"
	StaffChef             StaffType = "chef"
	StaffHeadChef         StaffType = "head_chef"
	StaffKitchenPorter    StaffType = "kitchen_porter"
	StaffManager          StaffType = "manager"
)

type staffDef struct {
	Type            StaffType
	Label           string
	Pool            StaffPool
	ServeMin        int
	ServeMax        int
	FoodServeMin    int
	FoodServeMax    int
	WageMinPounds   int
	WageMaxPounds   int
	SecurityBonus   int
	TipMinBps       int64
	TipMaxBps       int64
	CapMultMinBps   int64
	CapMultMaxBps   int64
	CountsAsManager bool
	RepDriftChance  float64
}

var staffCatalog = []staffDef{
	{Type: StaffTrainee, Label: "Trainee", Pool: PoolFrontOfHouse, ServeMin: 1, ServeMax: 2, WageMinPounds: 30, WageMaxPounds: 45},
	{Type: StaffExperienced, Label: "Experienced", Pool: PoolFrontOfHouse, ServeMin: 2, ServeMax: 4, WageMinPounds: 55, WageMaxPounds: 85, TipMinBps: 50, TipMaxBps: 150},
	{Type: StaffSpeed, Label: "Speed Pourer", Pool: PoolFrontOfHouse, ServeMin: 5, ServeMax: 8, WageMinPounds: 110, WageMaxPounds: 180},
	{Type: StaffCharisma, Label: "Charmer", Pool: PoolFrontOfHouse, ServeMin: 2, ServeMax: 3, WageMinPounds: 70, WageMaxPounds: 105, TipMinBps: 200, TipMaxBps: 400, RepDriftChance: 0.08},
	{Type: StaffSecurity, Label: "Security", Pool: PoolFrontOfHouse, ServeMin: 1, ServeMax: 2, WageMinPounds: 75, WageMaxPounds: 110, SecurityBonus: 1},
	{Type: StaffAssistantManager, Label: "Assistant Manager", Pool: PoolFrontOfHouse, ServeMin: 2, ServeMax: 3, WageMinPounds: 80, WageMaxPounds: 120, CapMultMinBps: 10_500, CapMultMaxBps: 11_500, CountsAsManager: true},
	{Type: StaffChef, Label: "Chef", Pool: PoolBackOfHouse, FoodServeMin: 3, FoodServeMax: 4, WageMinPounds: 70, WageMaxPounds: 100},
	{Type: StaffHeadChef, Label: "Head Chef", Pool: PoolBackOfHouse, FoodServeMin: 5, FoodServeMax: 7, WageMinPounds: 120, WageMaxPounds: 170},
	{Type: StaffKitchenPorter, Label: "Kitchen Porter", Pool: PoolBackOfHouse, FoodServeMin: 1, FoodServeMax: 2, WageMinPounds: 35, WageMaxPounds: 50},
	{Type: StaffManager, Label: "Manager", Pool: PoolManagers, ServeMin: 1, ServeMax: 2, WageMinPounds: 90, WageMaxPounds: 160, TipMinBps: 200, TipMaxBps: 700, CapMultMinBps: 11_000, CapMultMaxBps: 13_500, CountsAsManager: true},
}

func staffByType(t StaffType) (staffDef, error) {
	for _, sp := range staffCatalog {
		if sp.Type == t {
			return sp, nil
		}
	}
	return staffDef{}, fmt.Errorf("%w: staff type %q", ErrNotFound, t)
}

var staffFirstNames = []string{
	"Alfie", "Bea", "Callum", "Dot", "Eddie", "Fran", "Gaz", "Hattie", "Ivor", "Jess",
	"Kez", "Lol", "Maggie", "Nobby", "Olive", "Pip", "Reg", "Shaz", "Tam", "Vi",
}

var staffLastNames = []string{
	"Abbott", "Barker", "Cole", "Dawes", "Ellis", "Finch", "Gibbs", "Hale", "Ingram", "Jukes",
	"Kemp", "Lowe", "Marsh", "Noakes", "Orme", "Pike", "Rudd", "Stokes", "Tilly", "Webb",
}

type UpgradeID string

const (
	UpgradePoolTable         UpgradeID = "pool_table"
	UpgradeDarts             UpgradeID = "darts"
	UpgradeTVs               UpgradeID = "tvs"
	UpgradeJukebox           UpgradeID = "jukebox"
	UpgradeBeerGarden        UpgradeID = "beer_garden"
	UpgradeExtendedBar       UpgradeID = "extended_bar"
	UpgradeKitchen           UpgradeID = "kitchen"
	UpgradeFridgeExtension   UpgradeID = "fridge_extension"
	UpgradeCellarExpansion   UpgradeID = "cellar_expansion"
	UpgradeWineCellar        UpgradeID = "wine_cellar"
	UpgradeCCTV              UpgradeID = "cctv"
	UpgradeReinforcedDoorI   UpgradeID = "reinforced_door_1"
	UpgradeReinforcedDoorII  UpgradeID = "reinforced_door_2"
	UpgradeReinforcedDoorIII UpgradeID = "reinforced_door_3"
	UpgradeLighting          UpgradeID = "lighting"
	UpgradeStaffRoom         UpgradeID = "staff_room"
	UpgradeSoundproofing     UpgradeID = "soundproofing"
)

type upgradeDef struct {
	ID              UpgradeID
	Label           string
	CostPence       int64
	InstallNights   int
	TrafficBps      int64
	BarCap          int
	ServeCap        int
	RackCap         int
	FoodRackCap     int
	Security        int
	IncidentMultBps int64
	RepDrift        int
	TipBps          int64
	FOHCap          int
	BouncerCap      int
	UnlocksKitchen  bool
	RequiresLevel   int
	Requires        UpgradeID
	Milestone       MilestoneID
}

var upgradeCatalog = []upgradeDef{
	{ID: UpgradePoolTable, Label: "Pool Table", CostPence: 18_000, InstallNights: 2, TrafficBps: 500},
	{ID: UpgradeDarts, Label: "Darts Board", CostPence: 12_000, InstallNights: 1, TrafficBps: 300},
	{ID: UpgradeTVs, Label: "Sports TVs", CostPence: 24_000, InstallNights: 2, TrafficBps: 600},
	{ID: UpgradeJukebox, Label: "Jukebox", CostPence: 9_000, InstallNights: 1, TrafficBps: 200, RepDrift: 1},
	{ID: UpgradeBeerGarden, Label: "Beer Garden", CostPence: 32_000, InstallNights: 3, TrafficBps: 800, BarCap: 4, RequiresLevel: 2},
	{ID: UpgradeExtendedBar, Label: "Extended Bar", CostPence: 26_000, InstallNights: 2, BarCap: 6, ServeCap: 1},
	{ID: UpgradeKitchen, Label: "Kitchen", CostPence: 45_000, InstallNights: 3, FoodRackCap: 20, UnlocksKitchen: true},
	{ID: UpgradeFridgeExtension, Label: "Fridge Extension", CostPence: 15_000, InstallNights: 1, FoodRackCap: 10, Requires: UpgradeKitchen},
	{ID: UpgradeCellarExpansion, Label: "Cellar Expansion", CostPence: 24_000, InstallNights: 2, RackCap: 25},
	{ID: UpgradeWineCellar, Label: "Wine Cellar", CostPence: 52_000, InstallNights: 3, RackCap: 50, Requires: UpgradeCellarExpansion, RequiresLevel: 2},
	{ID: UpgradeCCTV, Label: "CCTV", CostPence: 26_000, InstallNights: 2, Security: 1, IncidentMultBps: 9_200, Milestone: MilestoneCalmHouse},
	{ID: UpgradeReinforcedDoorI, Label: "Reinforced Door I", CostPence: 22_000, InstallNights: 1, Security: 1},
	{ID: UpgradeReinforcedDoorII, Label: "Reinforced Door II", CostPence: 36_000, InstallNights: 2, Security: 2, BouncerCap: 1, Requires: UpgradeReinforcedDoorI, RequiresLevel: 2},
	{ID: UpgradeReinforcedDoorIII, Label: "Reinforced Door III", CostPence: 52_000, InstallNights: 3, Security: 3, Requires: UpgradeReinforcedDoorII, RequiresLevel: 3},
	{ID: UpgradeLighting, Label: "Better Lighting", CostPence: 14_000, InstallNights: 1, IncidentMultBps: 9_500, TipBps: 100},
	{ID: UpgradeStaffRoom, Label: "Staff Room", CostPence: 30_000, InstallNights: 2, FOHCap: 1, RequiresLevel: 2},
	{ID: UpgradeSoundproofing, Label: "Soundproofing", CostPence: 38_000, InstallNights: 2, IncidentMultBps: 9_700, RequiresLevel: 2},
}

func upgradeByID(id UpgradeID) (upgradeDef, error) {
	for _, up := range upgradeCatalog {
		if up.ID == id {
			return up, nil
		}
	}
	return upgradeDef{}, fmt.Errorf("%w: upgrade %q", ErrNotFound, id)
}

// Upgrades lists every upgrade id in catalog order.
func Upgrades() []UpgradeID {
	out := make([]UpgradeID, 0, len(upgradeCatalog))
	for _, up := range upgradeCatalog {
		out = append(out, up.ID)
	}
	return out
}

type ActivityID string

const (
	ActivityQuizNight       ActivityID = "quiz_night"
	ActivityLiveAcoustic    ActivityID = "live_acoustic"
	ActivityLiveBand        ActivityID = "live_band"
	ActivityOpenMic         ActivityID = "open_mic"
	ActivityDJNight         ActivityID = "dj_night"
	ActivitySportsNight     ActivityID = "sports_night"
	ActivityFamilyLunch     ActivityID = "family_lunch"
	ActivityCocktailPromo   ActivityID = "cocktail_promo"
	ActivityCharityNight    ActivityID = "charity_night"
	ActivityKaraoke         ActivityID = "karaoke"
	ActivityBreweryTakeover ActivityID = "brewery_takeover"
)

type activityDef struct {
	ID              ActivityID
	Label           string
	CostPence       int64
	TrafficBps      int64
	CapacityBonus   int
	RepInstant      int
	EventBps        int64
	RiskBps         int64
	PriceBps        int64
	ExtraSpoilDays  int
	DurationNights  int
	RequiresLevel   int
	RequiresUpgrade UpgradeID
	Milestone       MilestoneID
}

var activityCatalog = []activityDef{
	{ID: ActivityQuizNight, Label: "Quiz Night", CostPence: 6_000, TrafficBps: 800, RepInstant: 1, EventBps: 200, DurationNights: 1},
	{ID: ActivityLiveAcoustic, Label: "Live Acoustic", CostPence: 7_000, TrafficBps: 1_000, CapacityBonus: 2, RepInstant: 1, EventBps: 300, RiskBps: 200, DurationNights: 1},
	{ID: ActivityLiveBand, Label: "Live Band Night", CostPence: 12_000, TrafficBps: 1_500, CapacityBonus: 4, RepInstant: 2, EventBps: 500, RiskBps: 800, DurationNights: 1, Milestone: MilestoneOpenForBusiness},
	{ID: ActivityOpenMic, Label: "Open Mic", CostPence: 5_000, TrafficBps: 600, RepInstant: 1, EventBps: 400, RiskBps: 300, DurationNights: 1},
	{ID: ActivityDJNight, Label: "DJ Night", CostPence: 11_000, TrafficBps: 1_400, CapacityBonus: 4, RepInstant: 1, EventBps: 300, RiskBps: 1_000, DurationNights: 1, RequiresLevel: 2, RequiresUpgrade: UpgradeSoundproofing},
	{ID: ActivitySportsNight, Label: "Sports Night", CostPence: 11_500, TrafficBps: 1_300, CapacityBonus: 3, RepInstant: 1, EventBps: 300, RiskBps: 900, DurationNights: 2, RequiresUpgrade: UpgradeTVs},
	{ID: ActivityFamilyLunch, Label: "Family Lunch", CostPence: 6_500, TrafficBps: 700, RepInstant: 2, EventBps: 100, RiskBps: -300, DurationNights: 2, RequiresUpgrade: UpgradeKitchen},
	{ID: ActivityCocktailPromo, Label: "Cocktail Promo", CostPence: 8_000, TrafficBps: 900, EventBps: 200, RiskBps: 500, PriceBps: 500, ExtraSpoilDays: 1, DurationNights: 2},
	{ID: ActivityCharityNight, Label: "Charity Night", CostPence: 7_000, TrafficBps: 600, RepInstant: 4, EventBps: 200, RiskBps: -200, DurationNights: 1, Milestone: MilestoneLocalFavourite},
	{ID: ActivityKaraoke, Label: "Karaoke", CostPence: 7_500, TrafficBps: 1_100, CapacityBonus: 2, RepInstant: 1, EventBps: 600, RiskBps: 700, DurationNights: 1},
	{ID: ActivityBreweryTakeover, Label: "Brewery Takeover", CostPence: 14_000, TrafficBps: 1_600, CapacityBonus: 3, RepInstant: 2, RiskBps: 400, ExtraSpoilDays: 1, DurationNights: 3, RequiresLevel: 3, RequiresUpgrade: UpgradeExtendedBar},
}

func activityByID(id ActivityID) (activityDef, error) {
	for _, a := range activityCatalog {
		if a.ID == id {
			return a, nil
		}
	}
	return activityDef{}, fmt.Errorf("%w: activity %q", ErrNotFound, id)
}

// Activities lists every activity id in catalog order.
func Activities() []ActivityID {
	out := make([]ActivityID, 0, len(activityCatalog))
	for _, a := range activityCatalog {
		out = append(out, a.ID)
	}
	return out
}

type LenderID string

const (
	LenderTownland    LenderID = "townland"
	LenderSantnere    LenderID = "santnere"
	LenderBoyd        LenderID = "boyd_msg"
	LenderHalifix     LenderID = "halifix"
	LenderRoyalPound  LenderID = "royal_pound"
	LenderUnionAlbion LenderID = "union_albion"
)

type lenderDef struct {
	ID             LenderID
	Name           string
	MinLimitPounds int64
	MaxLimitPounds int64
	MinAPRBps      int64
	MaxAPRBps      int64
	MinScore       int
	Milestone      MilestoneID
}

var lenderCatalog = []lenderDef{
	{LenderTownland, "Townland Bank", 1_500, 3_000, 500, 800, 0, ""},
	{LenderSantnere, "Santnere", 2_000, 4_000, 700, 1_000, 0, ""},
	{LenderBoyd, "Boyd MSG", 3_500, 6_000, 600, 900, 580, ""},
	{LenderHalifix, "Halifix", 4_000, 8_000, 500, 700, 600, ""},
	{LenderRoyalPound, "Royal Pound", 6_000, 12_000, 400, 600, 680, MilestoneEstablished},
	{LenderUnionAlbion, "Union Albion", 10_000, 20_000, 300, 500, 740, MilestoneDebtDiet},
}

func lenderByID(id LenderID) (lenderDef, error) {
	for _, l := range lenderCatalog {
		if l.ID == id {
			return l, nil
		}
	}
	return lenderDef{}, fmt.Errorf("%w: lender %q", ErrNotFound, id)
}

// Lenders lists every lender id in catalog order.
func Lenders() []LenderID {
	out := make([]LenderID, 0, len(lenderCatalog))
	for _, l := range lenderCatalog {
		out = append(out, l.ID)
	}
	return out
}

type SecurityPolicy string

const (
	PolicyFriendly SecurityPolicy = "friendly"
	PolicyBalanced SecurityPolicy = "balanced"
	PolicyStrict   SecurityPolicy = "strict"
)

type policyDef struct {
	Policy          SecurityPolicy
	SecurityMod     int
	IncidentMultBps int64
	TrafficMultBps  int64
	BarCapMod       int
}

var policyCatalog = []policyDef{
	{PolicyFriendly, -1, 10_800, 10_400, 2},
	{PolicyBalanced, 0, 10_000, 10_000, 0},
	{PolicyStrict, 1, 9_200, 9_700, -2},
}

func policyByID(p SecurityPolicy) (policyDef, error) {
	for _, sp := range policyCatalog {
		if sp.Policy == p {
			return sp, nil
		}
	}
	return policyDef{}, fmt.Errorf("%w: security policy %q", ErrNotFound, p)
}

type SecurityTaskID string

const (
	TaskVisiblePatrol   SecurityTaskID = "visible_patrol"
	TaskCheckIDs        SecurityTaskID = "check_ids"
	TaskTightDoor       SecurityTaskID = "tight_door"
	TaskRadioLink       SecurityTaskID = "radio_link"
	TaskSearchBags      SecurityTaskID = "search_bags"
	TaskCalmTheBar      SecurityTaskID = "calm_the_bar"
	TaskUndercoverStaff SecurityTaskID = "undercover_staff"
	TaskPoliceLiaison   SecurityTaskID = "police_liaison"
	TaskZeroTolerance   SecurityTaskID = "zero_tolerance"
)

type taskDef struct {
	ID              SecurityTaskID
	Label           string
	Tier            int
	IncidentMultBps int64
	TrafficMultBps  int64
	CooldownNights  int
}

var taskCatalog = []taskDef{
	{TaskVisiblePatrol, "Visible Patrol", 1, 9_600, 10_300, 2},
	{TaskCheckIDs, "Check IDs", 1, 9_200, 9_900, 2},
	{TaskTightDoor, "Tight Door", 1, 8_800, 9_600, 3},
	{TaskRadioLink, "Radio Link", 2, 9_000, 10_000, 2},
	{TaskSearchBags, "Search Bags", 2, 8_500, 9_400, 3},
	{TaskCalmTheBar, "Calm the Bar", 2, 9_100, 10_100, 2},
	{TaskUndercoverStaff, "Undercover Staff", 3, 8_400, 10_000, 3},
	{TaskPoliceLiaison, "Police Liaison", 3, 8_200, 9_800, 4},
	{TaskZeroTolerance, "Zero Tolerance", 3, 8_000, 9_300, 4},
}

func taskByID(id SecurityTaskID) (taskDef, error) {
	for _, t := range taskCatalog {
		if t.ID == id {
			return t, nil
		}
	}
	return taskDef{}, fmt.Errorf("%w: security task %q", ErrNotFound, id)
}

type ActionCategory string

const (
	CategoryClassy   ActionCategory = "classy"
	CategoryBalanced ActionCategory = "balanced"
	CategoryShady    ActionCategory = "shady"
)

type LandlordActionID string

const (
	ActionWorkTheRoom         LandlordActionID = "work_the_room"
	ActionRunASpecial         LandlordActionID = "run_a_special"
	ActionPushyUpsell         LandlordActionID = "pushy_upsell"
	ActionLocalsNight         LandlordActionID = "locals_night"
	ActionPartnerPromo        LandlordActionID = "partner_promo"
	ActionFlirtForBuzz        LandlordActionID = "flirt_for_buzz"
	ActionVIPHospitality      LandlordActionID = "vip_hospitality"
	ActionInviteReviewer      LandlordActionID = "invite_reviewer"
	ActionPlantARumor         LandlordActionID = "plant_a_rumor"
	ActionSponsorCharity      LandlordActionID = "sponsor_charity"
	ActionExclusiveDoor       LandlordActionID = "exclusive_door_policy"
	ActionQuietFixer          LandlordActionID = "quiet_fixer"
	ActionHighSociety         LandlordActionID = "high_society_networking"
	ActionControlTheNarrative LandlordActionID = "control_the_narrative"
	ActionSabotageRival       LandlordActionID = "sabotage_rival"
)

type effectRange struct {
	RepMin, RepMax               int
	MoraleMin, MoraleMax         int
	TrafficMinBps, TrafficMaxBps int64
	ChaosMin, ChaosMax           int
}

type actionDef struct {
	ID             LandlordActionID
	Label          string
	Tier           int
	Category       ActionCategory
	BaseChance     float64
	CooldownRounds int
	CostPence      int64
	Success        effectRange
	Failure        effectRange
	SuccessRounds  int
	FailureRounds  int
}

func rng(repMin, repMax, moraleMin, moraleMax int, trafficMin, trafficMax int64, chaosMin, chaosMax int) effectRange {
	return effectRange{repMin, repMax, moraleMin, moraleMax, trafficMin, trafficMax, chaosMin, chaosMax}
}

var actionCatalog = []actionDef{
	{ActionWorkTheRoom, "Work the Room", 1, CategoryClassy, 0.62, 3, 1_000, rng(1, 3, 1, 2, 200, 500, -2, 0), rng(-1, -3, -1, 0, -200, 0, 1, 2), 3, 2},
	{ActionRunASpecial, "Run a Special", 1, CategoryBalanced, 0.58, 3, 600, rng(0, 2, 0, 2, 300, 600, -1, 1), rng(-1, -4, -1, -2, -300, -500, 1, 3), 3, 2},
	{ActionPushyUpsell, "Pushy Upsell", 1, CategoryShady, 0.55, 4, 400, rng(-1, 1, -1, 0, 500, 900, 1, 3), rng(-2, -5, -2, -3, -400, -800, 3, 5), 3, 2},
	{ActionLocalsNight, "Locals' Night", 2, CategoryClassy, 0.58, 4, 2_000, rng(2, 4, 1, 3, 300, 600, -3, -1), rng(-2, -4, -1, 0, -300, -100, 2, 3), 4, 2},
	{ActionPartnerPromo, "Partner Promo", 2, CategoryBalanced, 0.55, 4, 1_200, rng(1, 3, 0, 2, 400, 700, -1, 1), rng(-2, -5, -1, -3, -400, -700, 2, 4), 4, 2},
	{ActionFlirtForBuzz, "Flirt for Buzz", 2, CategoryShady, 0.52, 5, 800, rng(-1, 2, -1, 0, 700, 1_200, 2, 4), rng(-3, -6, -2, -4, -500, -900, 4, 6), 4, 3},
	{ActionVIPHospitality, "VIP Hospitality", 3, CategoryClassy, 0.55, 5, 3_000, rng(3, 5, 2, 4, 400, 800, -4, -2), rng(-2, -5, -1, -1, -300, -200, 2, 4), 4, 2},
	{ActionInviteReviewer, "Invite a Reviewer", 3, CategoryBalanced, 0.52, 5, 1_800, rng(1, 4, 1, 3, 500, 900, -1, 2), rng(-3, -6, -2, -4, -500, -800, 3, 5), 4, 3},
	{ActionPlantARumor, "Plant a Rumour", 3, CategoryShady, 0.48, 6, 1_200, rng(-2, 2, -1, 0, 900, 1_400, 3, 5), rng(-4, -8, -3, -5, -600, -1_000, 5, 7), 5, 3},
	{ActionSponsorCharity, "Sponsor a Charity", 4, CategoryClassy, 0.52, 6, 4_000, rng(4, 7, 2, 5, 500, 1_000, -5, -3), rng(-3, -6, -1, -2, -400, -200, 3, 5), 5, 3},
	{ActionExclusiveDoor, "Exclusive Door Policy", 4, CategoryBalanced, 0.50, 6, 2_400, rng(2, 5, 1, 4, 600, 1_100, -2, 2), rng(-4, -7, -2, -5, -600, -1_000, 4, 6), 5, 3},
	{ActionQuietFixer, "Quiet Fixer", 4, CategoryShady, 0.45, 7, 1_600, rng(-2, 3, -1, 0, 1_100, 1_600, 4, 6), rng(-5, -9, -4, -6, -700, -1_200, 6, 8), 5, 3},
	{ActionHighSociety, "High Society Networking", 5, CategoryClassy, 0.50, 7, 5_000, rng(5, 9, 3, 6, 600, 1_200, -6, -4), rng(-4, -7, -2, -3, -500, -300, 4, 6), 6, 3},
	{ActionControlTheNarrative, "Control the Narrative", 5, CategoryBalanced, 0.48, 7, 3_000, rng(3, 6, 2, 5, 700, 1_300, -2, 3), rng(-5, -8, -3, -6, -700, -1_200, 5, 7), 6, 3},
	{ActionSabotageRival, "Sabotage a Rival", 5, CategoryShady, 0.42, 8, 2_000, rng(-3, 4, -1, 0, 1_300, 1_800, 5, 7), rng(-6, -10, -5, -7, -800, -1_400, 7, 9), 6, 4},
}

func actionByID(id LandlordActionID) (actionDef, error) {
	for _, a := range actionCatalog {
		if a.ID == id {
			return a, nil
		}
	}
	return actionDef{}, fmt.Errorf("%w: landlord action %q", ErrNotFound, id)
}

// LandlordActions lists the actions unlocked up to tier.
func LandlordActions(tier int) []LandlordActionID {
	out := make([]LandlordActionID, 0, len(actionCatalog))
	for _, a := range actionCatalog {
		if a.Tier <= tier {
			out = append(out, a.ID)
		}
	}
	return out
}
