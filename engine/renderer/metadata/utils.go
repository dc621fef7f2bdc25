package metadata

import "math"

/** @brief Marks an identifier or generation as not yet assigned. */
const InvalidID uint32 = math.MaxUint32
