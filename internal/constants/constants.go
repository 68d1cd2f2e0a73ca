package constants

// 子记录删除策略（控制台配置）
const (
	// DeletionPolicyReplace 更新即全量替换，未出现在载荷中的子记录由服务端删除
	DeletionPolicyReplace = "replace"
	// DeletionPolicyExplicit 更新为增量合并，删除需显式列出子记录 ID
	DeletionPolicyExplicit = "explicit"
)

// 商品更新时子记录同步方式（接口字段 child_sync）
const (
	ChildSyncReplace = "replace"
	ChildSyncMerge   = "merge"
)

// 重量与尺寸单位
const (
	WeightUnitKG = "kg"
	WeightUnitG  = "g"
	WeightUnitLB = "lb"
	WeightUnitOZ = "oz"

	DimensionUnitCM = "cm"
	DimensionUnitMM = "mm"
	DimensionUnitIN = "in"
)

// 上传场景
const (
	UploadSceneProduct = "product"
	UploadSceneVariant = "variant"
	UploadSceneCommon  = "common"
)

// 队列与任务
const (
	QueueDefault     = "default"
	TaskMediaCleanup = "media:cleanup"
)

// 缓存键
const (
	CacheKeyProductListVersion = "product:list:version"
	CacheKeyProductListPrefix  = "product:list"
	CacheKeyReferencePrefix    = "reference"
)

// 参考数据类型
const (
	ReferenceCategories = "categories"
	ReferenceLocations  = "locations"
	ReferenceSuppliers  = "suppliers"
)
